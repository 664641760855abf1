package report

import (
	"context"
	"time"

	"github.com/repodigest/repodigest/internal/analysis"
	"github.com/repodigest/repodigest/internal/domain/models"
	"github.com/repodigest/repodigest/internal/filter"
	"github.com/repodigest/repodigest/internal/logger"
)

// Service assembles one repository's report: filter bots, categorize,
// summarize per commit, generate the overall summary, render HTML.
type Service struct {
	analysis *analysis.Service
	renderer *HTMLRenderer
}

func NewService(analysisSvc *analysis.Service) *Service {
	return &Service{
		analysis: analysisSvc,
		renderer: NewHTMLRenderer(),
	}
}

// Generate returns the rendered HTML report for one repository. Model
// failures degrade inside the analysis service; the only error path left is
// template execution.
func (s *Service) Generate(ctx context.Context, activity *models.RepositoryActivity, start, end time.Time) (string, error) {
	// The fetcher already drops bot authors, but the snapshot may come from
	// elsewhere (tests, cached data), so filter again before anything is
	// counted or sent to the model.
	activity = filter.Activity(activity)

	phase := time.Now()
	cat := s.analysis.Categorize(ctx, activity.Commits)
	logger.Info(ctx, "phase complete", "phase", "categorize",
		"commits", cat.TotalCount(), "duration_ms", time.Since(phase).Milliseconds())

	phase = time.Now()
	summaries := s.analysis.SummarizeCommits(ctx, cat.All())
	logger.Info(ctx, "phase complete", "phase", "summarize",
		"summaries", len(summaries), "duration_ms", time.Since(phase).Milliseconds())

	phase = time.Now()
	overall := s.analysis.OverallSummary(ctx, activity, cat, start, end)
	logger.Info(ctx, "phase complete", "phase", "overall_summary",
		"duration_ms", time.Since(phase).Milliseconds())

	return s.renderer.Render(activity, cat, summaries, overall, start, end)
}
