package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repodigest/repodigest/internal/domain/models"
)

func newTestService(client *MockAIClient) *Service {
	return NewService(client, NewSummaryEngine(client, EngineConfig{PreserveOrder: true}), nil)
}

func TestServiceCategorize(t *testing.T) {
	t.Run("should use the model's buckets when the response parses", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, int32(2000)).
			Return("Bug Fixes: [1], Features: [2], Improvements: [], Others: []", nil)

		commits := []models.Commit{
			{SHA: "1", Message: "fix crash"},
			{SHA: "2", Message: "add export"},
		}
		cat := newTestService(client).Categorize(context.Background(), commits)

		assert.Equal(t, []models.Commit{commits[0]}, cat.BugFixes)
		assert.Equal(t, []models.Commit{commits[1]}, cat.Features)
	})

	t.Run("should fall back to keywords when the call fails", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("quota exceeded"))

		commits := []models.Commit{
			{SHA: "1", Message: "fix crash"},
			{SHA: "2", Message: "add export"},
			{SHA: "3", Message: "update readme"},
		}
		cat := newTestService(client).Categorize(context.Background(), commits)

		assert.Len(t, cat.BugFixes, 1)
		assert.Len(t, cat.Features, 1)
		assert.Len(t, cat.Others, 1)
	})

	t.Run("should fall back to keywords when the response is unparseable", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("Sure! Here is my categorization as prose.", nil)

		cat := newTestService(client).Categorize(context.Background(), []models.Commit{
			{SHA: "1", Message: "refactor config loading"},
		})

		assert.Len(t, cat.Improvements, 1)
	})

	t.Run("should skip the model entirely for an empty batch", func(t *testing.T) {
		client := new(MockAIClient)

		cat := newTestService(client).Categorize(context.Background(), nil)

		assert.Zero(t, cat.TotalCount())
		client.AssertNotCalled(t, "Invoke")
	})

	t.Run("should spread a mixed batch across all four buckets", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("Bug Fixes: [1], Features: [2], Improvements: [3], Others: [4]", nil)

		commits := []models.Commit{
			{SHA: "1", Message: "fix: resolve null pointer exception"},
			{SHA: "2", Message: "feat: add new dashboard feature"},
			{SHA: "3", Message: "refactor: improve performance"},
			{SHA: "4", Message: "build: update dependencies"},
		}
		cat := newTestService(client).Categorize(context.Background(), commits)

		require.Equal(t, 4, cat.TotalCount())
		assert.Equal(t, "fix: resolve null pointer exception", cat.BugFixes[0].Message)
		assert.Equal(t, "feat: add new dashboard feature", cat.Features[0].Message)
		assert.Equal(t, "refactor: improve performance", cat.Improvements[0].Message)
		assert.Equal(t, "build: update dependencies", cat.Others[0].Message)
	})

	t.Run("should match the keyword classifier when falling back", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("Invalid response format", nil)

		commits := []models.Commit{
			{SHA: "1", Message: "fix: resolve null pointer exception"},
			{SHA: "2", Message: "feat: add new dashboard feature"},
			{SHA: "3", Message: "refactor: improve performance"},
			{SHA: "4", Message: "build: update dependencies"},
		}
		cat := newTestService(client).Categorize(context.Background(), commits)

		assert.Equal(t, ClassifyByKeywords(commits), cat)
	})

	t.Run("should number at most fifty commits in the prompt", func(t *testing.T) {
		client := new(MockAIClient)
		var seenPrompt string
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { seenPrompt = args.String(1) }).
			Return("Bug Fixes: [1], Features: [], Improvements: [], Others: []", nil)

		commits := make([]models.Commit, 60)
		for i := range commits {
			commits[i] = models.Commit{SHA: "s", Message: "fix something"}
		}
		newTestService(client).Categorize(context.Background(), commits)

		assert.Contains(t, seenPrompt, "50. ")
		assert.NotContains(t, seenPrompt, "51. ")
	})
}

func TestServiceOverallSummary(t *testing.T) {
	window := func() (time.Time, time.Time) {
		end := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
		return end.AddDate(0, 0, -7), end
	}

	t.Run("should return the model's summary", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, int32(500)).
			Return("A quiet week with two bug fixes landing.", nil)

		start, end := window()
		got := newTestService(client).OverallSummary(context.Background(),
			&models.RepositoryActivity{RepoName: "octo/widgets"}, Categorization{}, start, end)

		assert.Equal(t, "A quiet week with two bug fixes landing.", got)
	})

	t.Run("should include the aggregate statistics in the prompt", func(t *testing.T) {
		client := new(MockAIClient)
		var seenPrompt string
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { seenPrompt = args.String(1) }).
			Return("ok summary", nil)

		cat := Categorization{
			BugFixes: []models.Commit{{SHA: "1"}, {SHA: "2"}},
			Features: []models.Commit{{SHA: "3"}},
		}
		start, end := window()
		newTestService(client).OverallSummary(context.Background(),
			&models.RepositoryActivity{RepoName: "octo/widgets"}, cat, start, end)

		assert.Contains(t, seenPrompt, "Repository: octo/widgets")
		assert.Contains(t, seenPrompt, "Total commits: 3")
		assert.Contains(t, seenPrompt, "Bug fixes: 2")
		assert.Contains(t, seenPrompt, "Period: 2025-03-07 to 2025-03-14")
	})

	t.Run("should fall back to the default on failure", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("timeout"))

		start, end := window()
		got := newTestService(client).OverallSummary(context.Background(),
			&models.RepositoryActivity{RepoName: "octo/widgets"}, Categorization{}, start, end)

		assert.Equal(t, DefaultOverallSummary, got)
	})

	t.Run("should fall back to the default on a blank response", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.Anything, mock.Anything).Return("  \n ", nil)

		start, end := window()
		got := newTestService(client).OverallSummary(context.Background(),
			&models.RepositoryActivity{RepoName: "octo/widgets"}, Categorization{}, start, end)

		assert.Equal(t, DefaultOverallSummary, got)
	})

	t.Run("should handle a nil activity", func(t *testing.T) {
		start, end := window()
		got := newTestService(new(MockAIClient)).OverallSummary(context.Background(), nil, Categorization{}, start, end)

		assert.Equal(t, DefaultOverallSummary, got)
	})
}

func TestServiceSummarizeCommits(t *testing.T) {
	t.Run("should delegate to the engine and key results by sha", func(t *testing.T) {
		client := new(MockAIClient)
		client.On("Invoke", mock.Anything, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Generate exactly 2 short sentences")
		}), mock.Anything).Return("Adds the exporter. Documents the flags.", nil)

		got := newTestService(client).SummarizeCommits(context.Background(), []models.Commit{
			{SHA: "deadbeefcafe", Message: "add exporter"},
		})

		require.Len(t, got, 1)
		assert.Equal(t, "Adds the exporter. Documents the flags.", got["deadbeefcafe"])
	})
}
