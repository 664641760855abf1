// Package filter removes automated (bot) activity from fetched repository
// data. Filtering happens before any counting, prompting or rendering, so
// automation noise never reaches the AI or the report.
package filter

import (
	"strings"

	"github.com/repodigest/repodigest/internal/domain/models"
)

// Known automation accounts. Substring match, case-insensitive.
var knownBots = []string{
	"dependabot",
	"renovate",
	"github-actions",
}

// IsBotIdentity reports whether a GitHub login looks like an automated
// account. An empty login is treated as human: commits without a resolved
// login are common and must not be dropped.
func IsBotIdentity(login string) bool {
	if login == "" {
		return false
	}
	l := strings.ToLower(login)

	if strings.HasSuffix(l, "bot") {
		return true
	}
	if strings.Contains(l, "perfbot") {
		return true
	}
	if l == "testbot" || l == "codecov-io" || l == "coveralls" {
		return true
	}
	if strings.Contains(l, "gluten") && strings.Contains(l, "bot") {
		return true
	}
	for _, bot := range knownBots {
		if strings.Contains(l, bot) {
			return true
		}
	}
	return false
}

// Commits returns the subset of commits with human authors.
func Commits(commits []models.Commit) []models.Commit {
	out := make([]models.Commit, 0, len(commits))
	for _, c := range commits {
		if !IsBotIdentity(c.AuthorLogin) {
			out = append(out, c)
		}
	}
	return out
}

// PullRequests returns the subset of pull requests with human authors.
func PullRequests(prs []models.PullRequest) []models.PullRequest {
	out := make([]models.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if !IsBotIdentity(pr.AuthorLogin) {
			out = append(out, pr)
		}
	}
	return out
}

// Issues returns the subset of issues with human authors.
func Issues(issues []models.Issue) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for _, is := range issues {
		if !IsBotIdentity(is.AuthorLogin) {
			out = append(out, is)
		}
	}
	return out
}

// Activity returns a copy of the snapshot with all bot-authored entities
// removed, team subsets included.
func Activity(a *models.RepositoryActivity) *models.RepositoryActivity {
	if a == nil {
		return nil
	}
	return &models.RepositoryActivity{
		RepoName:     a.RepoName,
		Commits:      Commits(a.Commits),
		PullRequests: PullRequests(a.PullRequests),
		Issues:       Issues(a.Issues),
		TeamCommits:  Commits(a.TeamCommits),
		TeamPRs:      PullRequests(a.TeamPRs),
		TeamIssues:   Issues(a.TeamIssues),
	}
}
