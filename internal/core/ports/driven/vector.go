package driven

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// SimilarityIndex ranks embedded chunks against a query vector.
//
// Contract shared by every implementation (brute force today, approximate
// nearest neighbour later):
//   - results are ordered by descending cosine similarity
//   - equal scores (within 1e-9) keep store insertion order
//   - a zero-norm vector on either side scores 0
//   - k larger than the embedded chunk count returns all of them
//   - a query of the wrong length fails with domain.ErrDimensionMismatch
type SimilarityIndex interface {
	// Search returns the top-k chunks for the query vector. k must be >= 1.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredResult, error)
}
