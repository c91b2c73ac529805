// Package bruteforce provides an exact SimilarityIndex that scans every
// embedded chunk. Search cost is O(n·D) per query, which keeps a few hundred
// chunks well inside the interactive latency budget.
package bruteforce

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.SimilarityIndex = (*Index)(nil)

// TieEpsilon is the score difference under which two results count as tied.
const TieEpsilon = 1e-9

// cancelCheckInterval is how many chunks are scored between context checks.
const cancelCheckInterval = 256

// ChunkSource publishes immutable chunk sets. driven.ChunkStore satisfies it.
type ChunkSource interface {
	Snapshot() domain.ChunkSet
}

// Index ranks the chunks of a ChunkSource by cosine similarity.
// It holds no state of its own and is safe for concurrent use.
type Index struct {
	source ChunkSource
}

// New creates an index over source.
func New(source ChunkSource) *Index {
	return &Index{source: source}
}

type candidate struct {
	pos   int
	score float64
}

// Search returns the k chunks most similar to query, best first.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidInput, k)
	}

	set := ix.source.Snapshot()
	if set.Dimension == 0 {
		return []domain.ScoredResult{}, nil
	}
	if len(query) != set.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), set.Dimension)
	}

	qnorm := Norm(query)
	candidates := make([]candidate, 0, len(set.Chunks))
	for i := range set.Chunks {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		c := &set.Chunks[i]
		if !c.HasEmbedding() {
			continue
		}
		candidates = append(candidates, candidate{pos: i, score: cosine(query, qnorm, c.Embedding)})
	}

	rank(candidates)

	if k > len(candidates) {
		k = len(candidates)
	}
	results := make([]domain.ScoredResult, k)
	for i := 0; i < k; i++ {
		results[i] = domain.ScoredResult{
			Chunk: set.Chunks[candidates[i].pos].Clone(),
			Score: candidates[i].score,
		}
	}
	return results, nil
}

// rank orders candidates best first. An epsilon comparator is not
// transitive, so ranking is done in two passes: an exact sort by score with
// insertion order breaking equal scores, then each run of scores within
// TieEpsilon of the run's best is put back in insertion order. Runs are
// anchored on their best score, so a chain of near-ties never lets a score
// more than TieEpsilon lower move ahead of a better one.
func rank(candidates []candidate) {
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].pos < candidates[b].pos
	})

	for start := 0; start < len(candidates); {
		end := start + 1
		for end < len(candidates) && candidates[start].score-candidates[end].score <= TieEpsilon {
			end++
		}
		run := candidates[start:end]
		sort.Slice(run, func(a, b int) bool { return run[a].pos < run[b].pos })
		start = end
	}
}

// Cosine returns the cosine similarity of a and b computed in float64.
// A zero-norm vector on either side scores 0. Lengths must match.
func Cosine(a, b []float32) float64 {
	return cosine(a, Norm(a), b)
}

// Norm returns the Euclidean norm of v in float64.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		f := float64(x)
		sum += f * f
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32) float64 {
	bnorm := Norm(b)
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := dot / (anorm * bnorm)
	// Rounding can push identical vectors marginally past 1.
	return math.Max(-1, math.Min(1, s))
}
