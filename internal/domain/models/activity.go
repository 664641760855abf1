package models

import "time"

type (
	// Commit represents a single commit fetched from a repository. Commits are
	// immutable once fetched; AI-generated summaries live in a separate
	// map[SHA]string built by the summarization engine.
	Commit struct {
		SHA         string
		Message     string
		AuthorName  string
		AuthorEmail string
		AuthorLogin string
		Date        time.Time

		// PRNumber and PRBody are filled by the enrichment step when the
		// commit can be linked to a pull request. Zero/empty when unlinked.
		PRNumber int
		PRBody   string
	}

	// PullRequest is read-only after fetch.
	PullRequest struct {
		ID           int64
		Number       int
		Title        string
		State        string
		CreatedAt    time.Time
		UpdatedAt    time.Time
		ClosedAt     time.Time
		MergedAt     time.Time
		AuthorLogin  string
		Assignees    []string
		Labels       []string
		Comments     int
		Body         string
		Commits      int
		Additions    int
		Deletions    int
		ChangedFiles int
	}

	// Issue is read-only after fetch.
	Issue struct {
		ID            int64
		Number        int
		Title         string
		State         string
		CreatedAt     time.Time
		UpdatedAt     time.Time
		ClosedAt      time.Time
		AuthorLogin   string
		Assignees     []string
		Labels        []string
		Comments      int
		Body          string
		IsPullRequest bool
	}

	// RepositoryActivity aggregates everything fetched for one repository in
	// one run. The Team* slices are the subsets authored by logins in the
	// configured team allowlist.
	RepositoryActivity struct {
		RepoName     string
		Commits      []Commit
		PullRequests []PullRequest
		Issues       []Issue

		TeamCommits []Commit
		TeamPRs     []PullRequest
		TeamIssues  []Issue
	}
)

// ShortSHA abbreviates a commit SHA for prompts and logs.
func (c Commit) ShortSHA() string {
	if len(c.SHA) <= 8 {
		return c.SHA
	}
	return c.SHA[:8]
}
