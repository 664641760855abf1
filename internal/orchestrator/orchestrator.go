package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/repodigest/repodigest/internal/analysis"
	"github.com/repodigest/repodigest/internal/config"
	"github.com/repodigest/repodigest/internal/domain/ports"
	"github.com/repodigest/repodigest/internal/i18n"
	"github.com/repodigest/repodigest/internal/logger"
	"github.com/repodigest/repodigest/internal/report"
)

// ActivitySource is what the orchestrator needs from the VCS layer: fetching
// a repository's activity window and resolving issue numbers for prompt
// enrichment.
type ActivitySource interface {
	ports.ActivityFetcher
	Resolver(ownerRepo string) ports.IssueResolver
}

// Params carry per-run overrides. Zero values defer to the configuration.
type Params struct {
	Repositories []string
	EndDate      string
	PeriodDays   int
}

// Orchestrator drives a full digest run: resolve the date window, fetch each
// repository, run the analysis pipeline and write one HTML report per
// repository. A repository whose fetch fails is skipped; the run continues.
type Orchestrator struct {
	source ActivitySource
	client ports.AIClient
	cfg    *config.Config
	t      *i18n.Translations
}

func New(source ActivitySource, client ports.AIClient, cfg *config.Config, t *i18n.Translations) *Orchestrator {
	return &Orchestrator{
		source: source,
		client: client,
		cfg:    cfg,
		t:      t,
	}
}

func (o *Orchestrator) Run(ctx context.Context, params Params) error {
	repos := params.Repositories
	if len(repos) == 0 {
		repos = o.cfg.Repositories
	}
	if len(repos) == 0 {
		return fmt.Errorf("%s", o.t.GetMessage("error.no_repositories", 0, nil))
	}

	endDate := params.EndDate
	if endDate == "" {
		endDate = o.cfg.EndDate
	}
	period := params.PeriodDays
	if period <= 0 {
		period = o.cfg.PeriodDays
	}

	start, end, err := ResolveWindow(endDate, period)
	if err != nil {
		return fmt.Errorf("%s", o.t.GetMessage("error.invalid_end_date", 0, map[string]interface{}{
			"Date": endDate,
		}))
	}

	// Fail before any network call if the reports have nowhere to go.
	if err := os.MkdirAll(o.cfg.OutputDir, 0755); err != nil {
		msg := o.t.GetMessage("error.output_dir", 0, map[string]interface{}{"Dir": o.cfg.OutputDir})
		return fmt.Errorf("%s: %w", msg, err)
	}

	fmt.Println(o.t.GetMessage("run_started", 0, map[string]interface{}{
		"Count": len(repos),
		"Start": start.Format("2006-01-02"),
		"End":   end.Format("2006-01-02"),
	}))

	// One engine for the whole run, closed exactly once after the last
	// repository.
	engine := analysis.NewSummaryEngine(o.client, analysis.EngineConfig{
		Workers:       o.cfg.Summaries.Workers,
		Timeout:       time.Duration(o.cfg.Summaries.TimeoutSeconds) * time.Second,
		MaxTokens:     int32(o.cfg.Summaries.MaxTokens),
		PreserveOrder: o.cfg.Summaries.PreserveOrder,
	})
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Warn(ctx, "engine shutdown incomplete", "error", err)
		}
	}()

	written := 0
	for _, repo := range repos {
		ctx := logger.With(ctx, "repo", repo)
		path, err := o.processRepository(ctx, engine, repo, start, end)
		if err != nil {
			logger.Warn(ctx, "repository skipped", "error", err)
			fmt.Println(o.t.GetMessage("run_repo_skipped", 0, map[string]interface{}{"Repo": repo}))
			continue
		}
		written++
		fmt.Println(o.t.GetMessage("run_report_written", 0, map[string]interface{}{"Path": path}))
	}

	fmt.Println(o.t.GetMessage("run_finished", written, map[string]interface{}{"Count": written}))
	return nil
}

func (o *Orchestrator) processRepository(ctx context.Context, engine *analysis.SummaryEngine, repo string, start, end time.Time) (string, error) {
	phase := time.Now()
	activity, err := o.source.Fetch(ctx, repo, start, end)
	if err != nil {
		return "", err
	}
	logger.Info(ctx, "phase complete", "phase", "fetch",
		"commits", len(activity.Commits),
		"prs", len(activity.PullRequests),
		"issues", len(activity.Issues),
		"duration_ms", time.Since(phase).Milliseconds())

	reports := report.NewService(analysis.NewService(o.client, engine, o.source.Resolver(repo)))
	html, err := reports.Generate(ctx, activity, start, end)
	if err != nil {
		return "", err
	}

	path := filepath.Join(o.cfg.OutputDir, ReportFileName(repo))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("writing report for %s: %w", repo, err)
	}
	return path, nil
}

// ResolveWindow turns an optional end date plus a period into a concrete
// [start, end] pair. An empty endDate means today; start lies periodDays
// calendar days before end.
func ResolveWindow(endDate string, periodDays int) (time.Time, time.Time, error) {
	end := time.Now()
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -periodDays)
	return start, end, nil
}

// ReportFileName maps an owner/repo slug to a flat file name: slashes become
// dashes, spaces become underscores.
func ReportFileName(repo string) string {
	name := strings.ReplaceAll(repo, "/", "-")
	name = strings.ReplaceAll(name, " ", "_")
	return name + ".html"
}
