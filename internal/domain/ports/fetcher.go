package ports

import (
	"context"
	"time"

	"github.com/repodigest/repodigest/internal/domain/models"
)

// ActivityFetcher retrieves the activity snapshot for one repository over an
// inclusive date window. Implementations filter out bot authors before
// returning, so downstream code never sees automated accounts.
type ActivityFetcher interface {
	Fetch(ctx context.Context, ownerRepo string, start, end time.Time) (*models.RepositoryActivity, error)
}

// IssueResolver looks up the description of an issue referenced from a commit
// message, for extra summarization context. The second return is false when
// the issue does not exist or the lookup failed.
type IssueResolver interface {
	IssueDescription(ctx context.Context, number int) (string, bool)
}
