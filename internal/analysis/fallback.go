package analysis

import (
	"strings"

	"github.com/repodigest/repodigest/internal/domain/models"
)

// Keyword groups checked in fixed order; the first group that matches wins,
// so a message containing both "fix" and "feat" is a bug fix.
var (
	bugFixKeywords      = []string{"fix", "bug", "hotfix"}
	featureKeywords     = []string{"feat", "feature", "add", "optimize"}
	improvementKeywords = []string{"refactor", "perf"}
)

// ClassifyByKeywords deterministically buckets commits by message keywords.
// Used whenever the model call fails or its response cannot be parsed. Every
// commit lands in exactly one bucket; a missing message means Others.
func ClassifyByKeywords(commits []models.Commit) Categorization {
	var cat Categorization
	for _, commit := range commits {
		msg := strings.ToLower(commit.Message)
		switch {
		case msg != "" && containsAny(msg, bugFixKeywords):
			cat.BugFixes = append(cat.BugFixes, commit)
		case msg != "" && containsAny(msg, featureKeywords):
			cat.Features = append(cat.Features, commit)
		case msg != "" && containsAny(msg, improvementKeywords):
			cat.Improvements = append(cat.Improvements, commit)
		default:
			cat.Others = append(cat.Others, commit)
		}
	}
	return cat
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
