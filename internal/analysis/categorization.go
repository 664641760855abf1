package analysis

import "github.com/repodigest/repodigest/internal/domain/models"

// Categorization groups commits into four disjoint buckets. Once built,
// every input commit appears in exactly one bucket, whether the grouping
// came from the model or from the keyword fallback.
type Categorization struct {
	BugFixes     []models.Commit
	Features     []models.Commit
	Improvements []models.Commit
	Others       []models.Commit
}

// TotalCount returns the number of categorized commits.
func (c Categorization) TotalCount() int {
	return len(c.BugFixes) + len(c.Features) + len(c.Improvements) + len(c.Others)
}

// All returns every commit across buckets, bug fixes first.
func (c Categorization) All() []models.Commit {
	all := make([]models.Commit, 0, c.TotalCount())
	all = append(all, c.BugFixes...)
	all = append(all, c.Features...)
	all = append(all, c.Improvements...)
	all = append(all, c.Others...)
	return all
}
