package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodigest/repodigest/internal/domain/models"
)

func testCommits(n int) []models.Commit {
	commits := make([]models.Commit, n)
	for i := range commits {
		commits[i] = models.Commit{SHA: strings.Repeat("a", 39) + string(rune('0'+i)), Message: "commit"}
	}
	return commits
}

func TestParseCategorization(t *testing.T) {
	t.Run("should map bracket lists onto the input commits", func(t *testing.T) {
		commits := testCommits(5)
		response := "Bug Fixes: [1,3], Features: [2], Improvements: [], Others: [4,5]"

		cat, ok := ParseCategorization(response, commits)

		require.True(t, ok)
		assert.Equal(t, []models.Commit{commits[0], commits[2]}, cat.BugFixes)
		assert.Equal(t, []models.Commit{commits[1]}, cat.Features)
		assert.Empty(t, cat.Improvements)
		assert.Equal(t, []models.Commit{commits[3], commits[4]}, cat.Others)
	})

	t.Run("should skip malformed and out-of-range tokens", func(t *testing.T) {
		commits := testCommits(3)
		response := "Bug Fixes: [1, x, 99], Features: [2], Improvements: [], Others: []"

		cat, ok := ParseCategorization(response, commits)

		require.True(t, ok)
		assert.Equal(t, []models.Commit{commits[0]}, cat.BugFixes)
		assert.Equal(t, []models.Commit{commits[1]}, cat.Features)
	})

	t.Run("should place unmentioned commits in others", func(t *testing.T) {
		commits := testCommits(4)
		response := "Bug Fixes: [1], Features: [2], Improvements: [], Others: []"

		cat, ok := ParseCategorization(response, commits)

		require.True(t, ok)
		assert.Equal(t, []models.Commit{commits[2], commits[3]}, cat.Others)
		assert.Equal(t, len(commits), cat.TotalCount())
	})

	t.Run("should keep a duplicated index in its first bucket only", func(t *testing.T) {
		commits := testCommits(2)
		response := "Bug Fixes: [1], Features: [1,2], Improvements: [], Others: []"

		cat, ok := ParseCategorization(response, commits)

		require.True(t, ok)
		assert.Equal(t, []models.Commit{commits[0]}, cat.BugFixes)
		assert.Equal(t, []models.Commit{commits[1]}, cat.Features)
		assert.Equal(t, 2, cat.TotalCount())
	})

	t.Run("should tolerate flexible label whitespace", func(t *testing.T) {
		commits := testCommits(2)
		response := "Bug  Fixes : [1]\nFeatures: [2]"

		cat, ok := ParseCategorization(response, commits)

		require.True(t, ok)
		assert.Len(t, cat.BugFixes, 1)
		assert.Len(t, cat.Features, 1)
	})

	t.Run("should signal fallback when no index is recoverable", func(t *testing.T) {
		_, ok := ParseCategorization("I could not categorize these commits, sorry.", testCommits(3))
		assert.False(t, ok)
	})
}

func TestCleanSummaryResponse(t *testing.T) {
	t.Run("should join the first two lines into one", func(t *testing.T) {
		got, ok := CleanSummaryResponse("Adds caching to the session store.\nReduces login latency noticeably.")

		require.True(t, ok)
		assert.Equal(t, "Adds caching to the session store. Reduces login latency noticeably.", got)
	})

	t.Run("should strip a known prefix and ensure punctuation", func(t *testing.T) {
		got, ok := CleanSummaryResponse("Summary: This commit fixes the authentication bug")

		require.True(t, ok)
		assert.Equal(t, "This commit fixes the authentication bug.", got)
	})

	t.Run("should collapse runs of whitespace", func(t *testing.T) {
		got, ok := CleanSummaryResponse("Fixes   the \t retry  loop in the uploader.")

		require.True(t, ok)
		assert.Equal(t, "Fixes the retry loop in the uploader.", got)
	})

	t.Run("should pad a short fragment to two sentences", func(t *testing.T) {
		got, ok := CleanSummaryResponse("Fix typo")

		require.True(t, ok)
		assert.Equal(t, "Fix typo. Improves code quality.", got)
	})

	t.Run("should keep a single complete sentence as is", func(t *testing.T) {
		got, ok := CleanSummaryResponse("Reworks the pagination logic in the commit fetcher.")

		require.True(t, ok)
		assert.Equal(t, "Reworks the pagination logic in the commit fetcher.", got)
	})

	t.Run("should ignore lines past the second", func(t *testing.T) {
		got, ok := CleanSummaryResponse("One done.\nTwo done.\nThree done.")

		require.True(t, ok)
		assert.Equal(t, "One done. Two done.", got)
	})

	t.Run("should truncate long text at a late sentence boundary", func(t *testing.T) {
		first := strings.Repeat("x", 159) + "."
		raw := first + " " + strings.Repeat("y", 99) + "."

		got, ok := CleanSummaryResponse(raw)

		require.True(t, ok)
		assert.Equal(t, first, got)
	})

	t.Run("should hard-truncate with an ellipsis when no boundary fits", func(t *testing.T) {
		raw := strings.Repeat("z", 240)

		got, ok := CleanSummaryResponse(raw)

		require.True(t, ok)
		assert.Len(t, got, 200)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("should not split a multibyte rune when hard-truncating", func(t *testing.T) {
		raw := strings.Repeat("é", 150)

		got, ok := CleanSummaryResponse(raw)

		require.True(t, ok)
		assert.True(t, utf8.ValidString(got))
		assert.LessOrEqual(t, len(got), 200)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("should report empty responses as unusable", func(t *testing.T) {
		for _, raw := range []string{"", "   \n\t  ", "Summary:"} {
			_, ok := CleanSummaryResponse(raw)
			assert.False(t, ok, "raw %q", raw)
		}
	})
}
