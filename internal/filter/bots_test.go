package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repodigest/repodigest/internal/domain/models"
)

func TestIsBotIdentity(t *testing.T) {
	t.Run("should detect logins ending in bot", func(t *testing.T) {
		assert.True(t, IsBotIdentity("dependabot"))
		assert.True(t, IsBotIdentity("renovate-bot"))
		assert.True(t, IsBotIdentity("some-release-bot"))
	})

	t.Run("should be case insensitive", func(t *testing.T) {
		assert.True(t, IsBotIdentity("DEPENDABOT"))
		assert.True(t, IsBotIdentity("Renovate[Bot]"))
	})

	t.Run("should detect known automation accounts by substring", func(t *testing.T) {
		assert.True(t, IsBotIdentity("dependabot[bot]"))
		assert.True(t, IsBotIdentity("renovate[bot]"))
		assert.True(t, IsBotIdentity("github-actions[bot]"))
	})

	t.Run("should detect exact service accounts", func(t *testing.T) {
		assert.True(t, IsBotIdentity("testbot"))
		assert.True(t, IsBotIdentity("codecov-io"))
		assert.True(t, IsBotIdentity("coveralls"))
	})

	t.Run("should detect perfbot and gluten bot variants", func(t *testing.T) {
		assert.True(t, IsBotIdentity("chrome-perfbot-7"))
		assert.True(t, IsBotIdentity("gluten-ci-bot"))
	})

	t.Run("should keep humans whose login merely contains bot", func(t *testing.T) {
		assert.False(t, IsBotIdentity("abbott"))
		assert.False(t, IsBotIdentity("robotics-engineer"))
	})

	t.Run("should treat an empty login as human", func(t *testing.T) {
		assert.False(t, IsBotIdentity(""))
	})
}

func TestActivity(t *testing.T) {
	t.Run("should drop bot entities from every collection", func(t *testing.T) {
		activity := &models.RepositoryActivity{
			RepoName: "octo/widgets",
			Commits: []models.Commit{
				{SHA: "a1", AuthorLogin: "alice"},
				{SHA: "b2", AuthorLogin: "dependabot[bot]"},
			},
			PullRequests: []models.PullRequest{
				{Number: 1, AuthorLogin: "bob"},
				{Number: 2, AuthorLogin: "renovate[bot]"},
			},
			Issues: []models.Issue{
				{Number: 3, AuthorLogin: "carol"},
				{Number: 4, AuthorLogin: "github-actions[bot]"},
			},
			TeamCommits: []models.Commit{
				{SHA: "c3", AuthorLogin: "codecov-io"},
			},
		}

		filtered := Activity(activity)

		assert.Len(t, filtered.Commits, 1)
		assert.Equal(t, "a1", filtered.Commits[0].SHA)
		assert.Len(t, filtered.PullRequests, 1)
		assert.Equal(t, 1, filtered.PullRequests[0].Number)
		assert.Len(t, filtered.Issues, 1)
		assert.Equal(t, 3, filtered.Issues[0].Number)
		assert.Empty(t, filtered.TeamCommits)
	})

	t.Run("should not mutate the input snapshot", func(t *testing.T) {
		activity := &models.RepositoryActivity{
			Commits: []models.Commit{{SHA: "a1", AuthorLogin: "dependabot"}},
		}

		_ = Activity(activity)

		assert.Len(t, activity.Commits, 1)
	})

	t.Run("should pass nil through", func(t *testing.T) {
		assert.Nil(t, Activity(nil))
	})
}
