package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repodigest/repodigest/internal/analysis"
	"github.com/repodigest/repodigest/internal/domain/models"
)

func newTestReportService(client *analysis.MockAIClient) *Service {
	engine := analysis.NewSummaryEngine(client, analysis.EngineConfig{PreserveOrder: true})
	return NewService(analysis.NewService(client, engine, nil))
}

func TestServiceGenerate(t *testing.T) {
	t.Run("should keep bot activity out of the report entirely", func(t *testing.T) {
		client := new(analysis.MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("model offline"))

		activity := &models.RepositoryActivity{
			RepoName: "octo/widgets",
			Commits: []models.Commit{
				{SHA: "aaaa1111", Message: "fix: human work", AuthorLogin: "alice"},
				{SHA: "bbbb2222", Message: "chore(deps): bump", AuthorLogin: "dependabot[bot]"},
			},
			PullRequests: []models.PullRequest{
				{Number: 5, Title: "Bump deps", State: "open", AuthorLogin: "renovate[bot]"},
			},
		}

		start, end := testWindow()
		html, err := newTestReportService(client).Generate(context.Background(), activity, start, end)

		require.NoError(t, err)
		assert.Contains(t, html, "aaaa1111")
		assert.NotContains(t, html, "bbbb2222")
		assert.NotContains(t, html, "Bump deps")
		assert.Contains(t, html, "Total commits:</b> 1")
	})

	t.Run("should degrade to the default summary when the model is down", func(t *testing.T) {
		client := new(analysis.MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("model offline"))

		activity := &models.RepositoryActivity{
			RepoName: "octo/widgets",
			Commits:  []models.Commit{{SHA: "aaaa1111", Message: "fix: crash", AuthorLogin: "alice"}},
		}

		start, end := testWindow()
		html, err := newTestReportService(client).Generate(context.Background(), activity, start, end)

		require.NoError(t, err)
		assert.Contains(t, html, analysis.DefaultOverallSummary)
		// Keyword fallback still buckets the commit.
		assert.Contains(t, html, "aaaa1111")
	})

	t.Run("should use model output for all three stages when available", func(t *testing.T) {
		client := new(analysis.MockAIClient)
		client.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
			return mockPromptIs(p, "Categorize each commit")
		}), mock.Anything).Return("Bug Fixes: [1], Features: [], Improvements: [], Others: []", nil)
		client.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
			return mockPromptIs(p, "Generate exactly 2 short sentences")
		}), mock.Anything).Return("Fixes the crash. Adds a test.", nil)
		client.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
			return mockPromptIs(p, "Generate a 2-3 sentence summary")
		}), mock.Anything).Return("One crash fix landed this week.", nil)

		activity := &models.RepositoryActivity{
			RepoName: "octo/widgets",
			Commits:  []models.Commit{{SHA: "aaaa1111", Message: "fix: crash", AuthorLogin: "alice"}},
		}

		start, end := testWindow()
		html, err := newTestReportService(client).Generate(context.Background(), activity, start, end)

		require.NoError(t, err)
		assert.Contains(t, html, "One crash fix landed this week.")
		assert.Contains(t, html, "Fixes the crash. Adds a test.")
		assert.Contains(t, html, "Bug Fixes: 1")
	})
}

func mockPromptIs(prompt, prefix string) bool {
	return len(prompt) >= len(prefix) && prompt[:len(prefix)] == prefix
}
