package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/repodigest/repodigest/internal/domain/models"
	"github.com/repodigest/repodigest/internal/domain/ports"
	"github.com/repodigest/repodigest/internal/logger"
)

const (
	categorizationMaxTokens = 2000
	overallMaxTokens        = 500

	maxPromptCommits      = 50
	maxPromptMessageChars = 80

	// DefaultOverallSummary replaces the model's repository summary when the
	// call fails or comes back empty.
	DefaultOverallSummary = "No significant activity recorded for this period."
)

// Service wraps the model calls that operate on one repository's commit
// batch: categorization (with keyword fallback), per-commit summaries and
// the overall repository summary. None of its methods ever return an error;
// model failures degrade to deterministic results. The engine may be shared
// across services; the resolver is scoped to this repository and may be nil.
type Service struct {
	client   ports.AIClient
	engine   *SummaryEngine
	resolver ports.IssueResolver
}

func NewService(client ports.AIClient, engine *SummaryEngine, resolver ports.IssueResolver) *Service {
	return &Service{client: client, engine: engine, resolver: resolver}
}

// Categorize buckets commits via the model, falling back to keyword
// classification when the call fails or the response is unparseable. Every
// input commit ends up in exactly one bucket either way.
func (s *Service) Categorize(ctx context.Context, commits []models.Commit) Categorization {
	if len(commits) == 0 {
		return Categorization{}
	}

	response, err := s.client.Invoke(ctx, buildCategorizationPrompt(commits), categorizationMaxTokens)
	if err != nil {
		logger.Warn(ctx, "categorization request failed, using keyword fallback", "error", err)
		return ClassifyByKeywords(commits)
	}

	cat, ok := ParseCategorization(response, commits)
	if !ok {
		logger.Warn(ctx, "categorization response unparseable, using keyword fallback")
		return ClassifyByKeywords(commits)
	}

	logger.Info(ctx, "commits categorized",
		"bug_fixes", len(cat.BugFixes),
		"features", len(cat.Features),
		"improvements", len(cat.Improvements),
		"others", len(cat.Others))
	return cat
}

// SummarizeCommits delegates to the parallel summarization engine.
func (s *Service) SummarizeCommits(ctx context.Context, commits []models.Commit) map[string]string {
	return s.engine.Summarize(ctx, commits, s.resolver)
}

// OverallSummary asks the model for a 2-3 sentence repository activity
// summary built from aggregate counts. Any failure yields the fixed default
// string; the caller never sees an error.
func (s *Service) OverallSummary(ctx context.Context, activity *models.RepositoryActivity, cat Categorization, start, end time.Time) string {
	if activity == nil {
		return DefaultOverallSummary
	}

	var prompt strings.Builder
	prompt.WriteString("Generate a 2-3 sentence summary of this repository's activity.\n\n")
	fmt.Fprintf(&prompt, "Repository: %s\n", activity.RepoName)
	fmt.Fprintf(&prompt, "Period: %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	prompt.WriteString("Statistics:\n")
	fmt.Fprintf(&prompt, "- Total commits: %d\n", cat.TotalCount())
	fmt.Fprintf(&prompt, "- Bug fixes: %d\n", len(cat.BugFixes))
	fmt.Fprintf(&prompt, "- New features: %d\n", len(cat.Features))
	fmt.Fprintf(&prompt, "- Improvements: %d\n", len(cat.Improvements))
	fmt.Fprintf(&prompt, "- Other changes: %d\n", len(cat.Others))
	fmt.Fprintf(&prompt, "- Pull requests: %d\n", len(activity.PullRequests))
	fmt.Fprintf(&prompt, "- New issues: %d\n", len(activity.Issues))
	prompt.WriteString("\nFocus on the most significant activity and trends. Be concise and informative.")

	summary, err := s.client.Invoke(ctx, prompt.String(), overallMaxTokens)
	if err != nil {
		logger.Warn(ctx, "overall summary request failed, using default", "error", err)
		return DefaultOverallSummary
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return DefaultOverallSummary
	}
	return summary
}

// buildCategorizationPrompt lists numbered commit messages (at most 50, each
// truncated to 80 chars) and pins the exact response format the parser
// expects.
func buildCategorizationPrompt(commits []models.Commit) string {
	var prompt strings.Builder
	prompt.WriteString("Categorize each commit by number into: Bug Fixes, Features, Improvements, Others.\n")
	prompt.WriteString("Use keywords: Bug Fixes (fix,bug,hotfix), Features (feat,feature,add,optimize), ")
	prompt.WriteString("Improvements (refactor,perf), Others (build,ci,chore,test,docs).\n")
	prompt.WriteString("Priority order: Bug Fixes > Features > Improvements > Others\n\n")

	for i, commit := range commits {
		if i >= maxPromptCommits {
			break
		}
		if commit.Message == "" {
			continue
		}
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, truncate(commit.Message, maxPromptMessageChars+3))
	}

	prompt.WriteString("\nRespond with ONLY this format: ")
	prompt.WriteString("Bug Fixes: [1,3,5], Features: [2,4], Improvements: [6], Others: [7,8]")
	return prompt.String()
}
