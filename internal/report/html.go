package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/repodigest/repodigest/internal/analysis"
	"github.com/repodigest/repodigest/internal/domain/models"
)

// HTMLRenderer turns an activity snapshot plus analysis results into a
// self-contained HTML page. All user-controlled text (titles, messages,
// author logins, AI summaries) goes through html/template's contextual
// escaping; nothing is concatenated into markup by hand.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

type (
	commitView struct {
		ShortSHA    string
		URL         string
		Author      string
		Summary     string
		Description string
	}

	commitSection struct {
		Title   string
		Commits []commitView
	}

	prView struct {
		Number int
		URL    string
		Title  string
		Author string
	}

	issueView struct {
		Number  int
		URL     string
		Title   string
		Author  string
		Created string
	}

	reportData struct {
		RepoName  string
		StartDate string
		EndDate   string

		OverallSummary string

		TotalCommits     int
		PRCount          int
		IssueCount       int
		BugFixCount      int
		FeatureCount     int
		ImprovementCount int
		OtherCount       int
		TeamCommitCount  int

		TeamPRs     []prView
		TeamCommits []commitView
		Sections    []commitSection
		OpenPRs     []prView
		Issues      []issueView
	}
)

// Render produces the full HTML document for one repository.
func (r *HTMLRenderer) Render(activity *models.RepositoryActivity, cat analysis.Categorization,
	summaries map[string]string, overallSummary string, start, end time.Time) (string, error) {

	data := reportData{
		RepoName:         activity.RepoName,
		StartDate:        start.Format("2006-01-02"),
		EndDate:          end.Format("2006-01-02"),
		OverallSummary:   overallSummary,
		TotalCommits:     cat.TotalCount(),
		PRCount:          len(activity.PullRequests),
		IssueCount:       len(activity.Issues),
		BugFixCount:      len(cat.BugFixes),
		FeatureCount:     len(cat.Features),
		ImprovementCount: len(cat.Improvements),
		OtherCount:       len(cat.Others),
		TeamCommitCount:  len(activity.TeamCommits),
		TeamPRs:          prViews(activity.RepoName, activity.TeamPRs),
		TeamCommits:      commitViews(activity.RepoName, activity.TeamCommits, summaries),
		OpenPRs:          prViews(activity.RepoName, openPRs(activity.PullRequests)),
		Issues:           issueViews(activity.RepoName, activity.Issues),
		Sections: []commitSection{
			{Title: "Bug Fixes", Commits: commitViews(activity.RepoName, cat.BugFixes, summaries)},
			{Title: "New Features", Commits: commitViews(activity.RepoName, cat.Features, summaries)},
			{Title: "Improvements", Commits: commitViews(activity.RepoName, cat.Improvements, summaries)},
			{Title: "Others", Commits: commitViews(activity.RepoName, cat.Others, summaries)},
		},
	}

	var out strings.Builder
	if err := r.tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("rendering report for %s: %w", activity.RepoName, err)
	}
	return out.String(), nil
}

func commitViews(repoName string, commits []models.Commit, summaries map[string]string) []commitView {
	views := make([]commitView, 0, len(commits))
	for _, c := range commits {
		author := c.AuthorLogin
		if author == "" {
			author = c.AuthorName
		}
		views = append(views, commitView{
			ShortSHA:    c.ShortSHA(),
			URL:         fmt.Sprintf("https://github.com/%s/commit/%s", repoName, c.SHA),
			Author:      author,
			Summary:     summaries[c.SHA],
			Description: firstLine(c.Message),
		})
	}
	return views
}

func prViews(repoName string, prs []models.PullRequest) []prView {
	views := make([]prView, 0, len(prs))
	for _, pr := range prs {
		views = append(views, prView{
			Number: pr.Number,
			URL:    fmt.Sprintf("https://github.com/%s/pull/%d", repoName, pr.Number),
			Title:  pr.Title,
			Author: pr.AuthorLogin,
		})
	}
	return views
}

func issueViews(repoName string, issues []models.Issue) []issueView {
	views := make([]issueView, 0, len(issues))
	for _, is := range issues {
		if is.IsPullRequest {
			continue
		}
		created := ""
		if !is.CreatedAt.IsZero() {
			created = is.CreatedAt.Format("2006-01-02")
		}
		views = append(views, issueView{
			Number:  is.Number,
			URL:     fmt.Sprintf("https://github.com/%s/issues/%d", repoName, is.Number),
			Title:   is.Title,
			Author:  is.AuthorLogin,
			Created: created,
		})
	}
	return views
}

func openPRs(prs []models.PullRequest) []models.PullRequest {
	out := make([]models.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.State == "open" {
			out = append(out, pr)
		}
	}
	return out
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	line = strings.TrimSpace(line)
	if len(line) > 100 {
		line = line[:97] + "..."
	}
	return line
}

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Activity Digest - {{.RepoName}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 1200px; margin: 0 auto; padding: 20px; background-color: #f9f9f9; }
h1 { color: #0366d6; border-bottom: 3px solid #0366d6; padding-bottom: 10px; margin-bottom: 30px; }
h2 { color: #24292e; border-bottom: 1px solid #e1e4e8; padding-bottom: 8px; margin-top: 30px; margin-bottom: 15px; }
h3 { color: #586069; margin-top: 20px; margin-bottom: 8px; }
.commit-list { margin: 0 0 12px 1.5em; padding: 0; }
.commit-list.empty { margin-left: 0; }
.commit-list.empty > li { list-style: none; padding: 2px 0; color: #6a737d; font-style: italic; }
a { color: #0366d6; text-decoration: none; }
a:hover { text-decoration: underline; }
em { color: #6a737d; font-style: italic; }
</style>
</head>
<body>
<h1>{{.RepoName}} Activity Digest ({{.StartDate}} to {{.EndDate}})</h1>

<h2>Overall Summary</h2>
<p>{{.OverallSummary}}</p>
<ul>
<li><b>Total commits:</b> {{.TotalCommits}}</li>
<li><b>Number of PRs created/updated:</b> {{.PRCount}}</li>
<li><b>Number of issues reported:</b> {{.IssueCount}}</li>
<li><b>Count per commit type:</b> Bug Fixes: {{.BugFixCount}}, New Features: {{.FeatureCount}}, Improvements: {{.ImprovementCount}}, Others: {{.OtherCount}}</li>
<li><b>Total commits by team:</b> {{.TeamCommitCount}}</li>
</ul>
<hr>

<h2>Team Activity</h2>
<h3>Pull Requests</h3>
<ul>
{{range .TeamPRs}}<li><a href="{{.URL}}">[#{{.Number}}] {{.Title}}</a> - by {{.Author}}</li>
{{else}}<li><em>No team pull request activity found in this period.</em></li>
{{end}}</ul>
<h3>Commits</h3>
<ul>
{{range .TeamCommits}}<li><a href="{{.URL}}">{{.ShortSHA}}</a> - by {{.Author}}</li>
{{else}}<li><em>No team commit activity found in this period.</em></li>
{{end}}</ul>

<h2>Commits by Category</h2>
{{range .Sections}}<h3>{{.Title}}</h3>
<ol class="commit-list{{if not .Commits}} empty{{end}}">
{{range .Commits}}<li><a href="{{.URL}}">{{.ShortSHA}}</a> - by {{.Author}}{{if .Summary}}<br>{{.Summary}}{{else if .Description}}<br><em>{{.Description}}</em>{{end}}</li>
{{else}}<li>No commits in this category.</li>
{{end}}</ol>
{{end}}
<h2>Open Pull Requests</h2>
<ul>
{{range .OpenPRs}}<li><a href="{{.URL}}">#{{.Number}}: {{.Title}}</a> - by {{.Author}}</li>
{{else}}<li><em>No open pull requests in this period.</em></li>
{{end}}</ul>

<h2>Issues Reported ({{.StartDate}} to {{.EndDate}})</h2>
<ul>
{{range .Issues}}<li><a href="{{.URL}}">#{{.Number}}: {{.Title}}</a> - created {{.Created}} by {{.Author}}</li>
{{else}}<li><em>No issues reported in this period.</em></li>
{{end}}</ul>
</body>
</html>
`
