package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"

	domainerrors "github.com/repodigest/repodigest/internal/domain/errors"
	"github.com/repodigest/repodigest/internal/domain/models"
	"github.com/repodigest/repodigest/internal/domain/ports"
	"github.com/repodigest/repodigest/internal/filter"
	"github.com/repodigest/repodigest/internal/logger"
)

var _ ports.ActivityFetcher = (*Fetcher)(nil)

type RepositoriesService interface {
	ListCommits(ctx context.Context, owner, repo string, opts *github.CommitsListOptions) ([]*github.RepositoryCommit, *github.Response, error)
}

type PullRequestsService interface {
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
}

type IssuesService interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
	Get(ctx context.Context, owner, repo string, number int) (*github.Issue, *github.Response, error)
}

const (
	perPage            = 100
	issueCacheSize     = 128
	maxPaginationPages = 10
)

// Fetcher retrieves one repository's activity window from the GitHub API.
// Bot-authored entities are dropped as they are mapped, before anything
// downstream can count or summarize them.
type Fetcher struct {
	repoService   RepositoriesService
	prService     PullRequestsService
	issuesService IssuesService
	teamLogins    map[string]bool
}

func NewFetcher(token string, teamLogins []string) *Fetcher {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return &Fetcher{
		repoService:   client.Repositories,
		prService:     client.PullRequests,
		issuesService: client.Issues,
		teamLogins:    loginSet(teamLogins),
	}
}

// NewFetcherWithServices wires explicit service implementations, used by
// tests to substitute mocks.
func NewFetcherWithServices(repos RepositoriesService, prs PullRequestsService, issues IssuesService, teamLogins []string) *Fetcher {
	return &Fetcher{
		repoService:   repos,
		prService:     prs,
		issuesService: issues,
		teamLogins:    loginSet(teamLogins),
	}
}

// Fetch returns the bot-filtered activity snapshot for ownerRepo over the
// inclusive window [start, end]. Commits are enriched with a linked pull
// request number and body when the squash-merge reference in the message
// matches a fetched PR.
func (f *Fetcher) Fetch(ctx context.Context, ownerRepo string, start, end time.Time) (*models.RepositoryActivity, error) {
	owner, repo, err := splitOwnerRepo(ownerRepo)
	if err != nil {
		return nil, domainerrors.NewFetchError(ownerRepo, err)
	}

	windowEnd := endOfDay(end)

	commits, err := f.fetchCommits(ctx, owner, repo, start, windowEnd)
	if err != nil {
		return nil, domainerrors.NewFetchError(ownerRepo, err)
	}
	prs, err := f.fetchPullRequests(ctx, owner, repo, start, windowEnd)
	if err != nil {
		return nil, domainerrors.NewFetchError(ownerRepo, err)
	}
	issues, err := f.fetchIssues(ctx, owner, repo, start, windowEnd)
	if err != nil {
		return nil, domainerrors.NewFetchError(ownerRepo, err)
	}

	commits = linkPullRequests(commits, prs)

	activity := &models.RepositoryActivity{
		RepoName:     owner + "/" + repo,
		Commits:      commits,
		PullRequests: prs,
		Issues:       issues,
	}
	f.partitionTeam(activity)

	logger.Info(ctx, "activity fetched",
		"repo", activity.RepoName,
		"commits", len(activity.Commits),
		"prs", len(activity.PullRequests),
		"issues", len(activity.Issues))
	return activity, nil
}

// Resolver returns an issue-description resolver scoped to ownerRepo,
// backed by an LRU cache so a reference repeated across commits costs one
// API call.
func (f *Fetcher) Resolver(ownerRepo string) ports.IssueResolver {
	owner, repo, err := splitOwnerRepo(ownerRepo)
	if err != nil {
		return nil
	}
	cache, _ := lru.New[int, string](issueCacheSize)
	return &issueResolver{
		issues: f.issuesService,
		owner:  owner,
		repo:   repo,
		cache:  cache,
	}
}

func (f *Fetcher) fetchCommits(ctx context.Context, owner, repo string, start, end time.Time) ([]models.Commit, error) {
	var out []models.Commit
	opts := &github.CommitsListOptions{
		Since:       start,
		Until:       end,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for page := 0; page < maxPaginationPages; page++ {
		commits, resp, err := f.repoService.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing commits: %w", err)
		}
		for _, rc := range commits {
			commit := models.Commit{
				SHA:         rc.GetSHA(),
				Message:     rc.GetCommit().GetMessage(),
				AuthorName:  rc.GetCommit().GetAuthor().GetName(),
				AuthorEmail: rc.GetCommit().GetAuthor().GetEmail(),
				AuthorLogin: rc.GetAuthor().GetLogin(),
				Date:        rc.GetCommit().GetAuthor().GetDate().Time,
			}
			if filter.IsBotIdentity(commit.AuthorLogin) {
				continue
			}
			out = append(out, commit)
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (f *Fetcher) fetchPullRequests(ctx context.Context, owner, repo string, start, end time.Time) ([]models.PullRequest, error) {
	var out []models.PullRequest
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for page := 0; page < maxPaginationPages; page++ {
		prs, resp, err := f.prService.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests: %w", err)
		}
		pastWindow := false
		for _, pr := range prs {
			created := pr.GetCreatedAt().Time
			updated := pr.GetUpdatedAt().Time
			if updated.Before(start) {
				// Sorted by updated desc: nothing further back can match.
				pastWindow = true
				break
			}
			if !inWindow(created, start, end) && !inWindow(updated, start, end) {
				continue
			}
			if filter.IsBotIdentity(pr.GetUser().GetLogin()) {
				continue
			}
			out = append(out, models.PullRequest{
				ID:           pr.GetID(),
				Number:       pr.GetNumber(),
				Title:        pr.GetTitle(),
				State:        pr.GetState(),
				CreatedAt:    created,
				UpdatedAt:    updated,
				ClosedAt:     pr.GetClosedAt().Time,
				MergedAt:     pr.GetMergedAt().Time,
				AuthorLogin:  pr.GetUser().GetLogin(),
				Assignees:    userLogins(pr.Assignees),
				Labels:       labelNames(pr.Labels),
				Comments:     pr.GetComments(),
				Body:         pr.GetBody(),
				Commits:      pr.GetCommits(),
				Additions:    pr.GetAdditions(),
				Deletions:    pr.GetDeletions(),
				ChangedFiles: pr.GetChangedFiles(),
			})
		}
		if pastWindow || resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (f *Fetcher) fetchIssues(ctx context.Context, owner, repo string, start, end time.Time) ([]models.Issue, error) {
	var out []models.Issue
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       start,
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for page := 0; page < maxPaginationPages; page++ {
		issues, resp, err := f.issuesService.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("listing issues: %w", err)
		}
		for _, is := range issues {
			created := is.GetCreatedAt().Time
			updated := is.GetUpdatedAt().Time
			if !inWindow(created, start, end) && !inWindow(updated, start, end) {
				continue
			}
			if filter.IsBotIdentity(is.GetUser().GetLogin()) {
				continue
			}
			out = append(out, models.Issue{
				ID:            is.GetID(),
				Number:        is.GetNumber(),
				Title:         is.GetTitle(),
				State:         is.GetState(),
				CreatedAt:     created,
				UpdatedAt:     updated,
				ClosedAt:      is.GetClosedAt().Time,
				AuthorLogin:   is.GetUser().GetLogin(),
				Assignees:     userLogins(is.Assignees),
				Labels:        labelNames(is.Labels),
				Comments:      is.GetComments(),
				Body:          is.GetBody(),
				IsPullRequest: is.IsPullRequest(),
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return out, nil
}

func (f *Fetcher) partitionTeam(a *models.RepositoryActivity) {
	if len(f.teamLogins) == 0 {
		return
	}
	for _, c := range a.Commits {
		if f.teamLogins[strings.ToLower(c.AuthorLogin)] {
			a.TeamCommits = append(a.TeamCommits, c)
		}
	}
	for _, pr := range a.PullRequests {
		if f.teamLogins[strings.ToLower(pr.AuthorLogin)] {
			a.TeamPRs = append(a.TeamPRs, pr)
		}
	}
	for _, is := range a.Issues {
		if f.teamLogins[strings.ToLower(is.AuthorLogin)] {
			a.TeamIssues = append(a.TeamIssues, is)
		}
	}
}

type issueResolver struct {
	issues IssuesService
	owner  string
	repo   string
	cache  *lru.Cache[int, string]
}

func (r *issueResolver) IssueDescription(ctx context.Context, number int) (string, bool) {
	if desc, ok := r.cache.Get(number); ok {
		return desc, desc != ""
	}
	issue, _, err := r.issues.Get(ctx, r.owner, r.repo, number)
	if err != nil || issue == nil {
		r.cache.Add(number, "")
		return "", false
	}
	body := issue.GetBody()
	r.cache.Add(number, body)
	return body, body != ""
}

var mergeRefPattern = regexp.MustCompile(`\(#(\d+)\)`)

// linkPullRequests attaches PR number and body to commits whose message
// first line carries a squash-merge reference like "(#123)".
func linkPullRequests(commits []models.Commit, prs []models.PullRequest) []models.Commit {
	if len(commits) == 0 || len(prs) == 0 {
		return commits
	}
	bodies := make(map[int]string, len(prs))
	for _, pr := range prs {
		bodies[pr.Number] = pr.Body
	}
	for i, c := range commits {
		firstLine, _, _ := strings.Cut(c.Message, "\n")
		m := mergeRefPattern.FindStringSubmatch(firstLine)
		if m == nil {
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if body, ok := bodies[num]; ok {
			commits[i].PRNumber = num
			commits[i].PRBody = body
		}
	}
	return commits
}

func splitOwnerRepo(ownerRepo string) (string, string, error) {
	slug := strings.TrimPrefix(strings.TrimSpace(ownerRepo), "https://github.com/")
	slug = strings.TrimSuffix(slug, "/")
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, expected owner/repo", ownerRepo)
	}
	return parts[0], parts[1], nil
}

func inWindow(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(start) && !t.After(end)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func loginSet(logins []string) map[string]bool {
	set := make(map[string]bool, len(logins))
	for _, l := range logins {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			set[l] = true
		}
	}
	return set
}

func userLogins(users []*github.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.GetLogin())
	}
	return out
}

func labelNames(labels []*github.Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.GetName())
	}
	return out
}
