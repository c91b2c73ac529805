package memory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// errMixedDimensions and errMalformedChunk are classified into the
// caller-facing taxonomy by Upsert and Load.
var (
	errMixedDimensions = errors.New("embeddings disagree on dimension")
	errMalformedChunk  = errors.New("malformed chunk")
)

// ChunkStore is the in-memory implementation of driven.ChunkStore.
//
// The current chunk set is immutable once published. Writers build and
// validate a new set without holding the lock, then swap it in.
type ChunkStore struct {
	mu       sync.RWMutex
	set      domain.ChunkSet
	byID     map[string]int
	fixedDim int
}

// Option configures a ChunkStore.
type Option func(*ChunkStore)

// WithDimension pins the store to a fixed embedding dimension.
// Sets whose embeddings have any other length are rejected.
func WithDimension(d int) Option {
	return func(s *ChunkStore) {
		if d > 0 {
			s.fixedDim = d
		}
	}
}

// NewChunkStore creates an empty in-memory chunk store.
func NewChunkStore(opts ...Option) *ChunkStore {
	s := &ChunkStore{byID: make(map[string]int)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the contents with the chunks read from src.
func (s *ChunkStore) Load(ctx context.Context, src driven.SnapshotStore) error {
	chunks, err := src.Read(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	set, index, err := s.build(chunks)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCorruptSnapshot, err)
	}

	s.publish(set, index)
	logger.Debug("Loaded %d chunks from snapshot (dimension %d)", len(set.Chunks), set.Dimension)
	return nil
}

// Save writes the current contents to dst. The set is captured under the
// read lock and written without it.
func (s *ChunkStore) Save(ctx context.Context, dst driven.SnapshotStore) error {
	set := s.Snapshot()
	if err := dst.Write(ctx, set.Chunks); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Upsert replaces the entire chunk set. On error the store is unchanged.
func (s *ChunkStore) Upsert(_ context.Context, chunks []domain.Chunk) error {
	set, index, err := s.build(chunks)
	if err != nil {
		if errors.Is(err, errMixedDimensions) {
			return fmt.Errorf("%w: %w", domain.ErrDimensionMismatch, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	s.publish(set, index)
	return nil
}

// All yields the chunks of the set current when iteration begins.
func (s *ChunkStore) All() iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		set := s.Snapshot()
		for i := range set.Chunks {
			if !yield(set.Chunks[i].Clone()) {
				return
			}
		}
	}
}

// Get retrieves a chunk by ID.
func (s *ChunkStore) Get(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	i, ok := s.byID[id]
	set := s.set
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	c := set.Chunks[i].Clone()
	return &c, nil
}

// Snapshot returns the current chunk set. Callers must treat it as read-only.
func (s *ChunkStore) Snapshot() domain.ChunkSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// Dimension returns the store-wide embedding size.
func (s *ChunkStore) Dimension() int {
	return s.Snapshot().Dimension
}

// Len returns the number of stored chunks.
func (s *ChunkStore) Len() int {
	return len(s.Snapshot().Chunks)
}

// build validates chunks and returns a private copy ready to publish.
// Version is left for publish to assign.
func (s *ChunkStore) build(chunks []domain.Chunk) (domain.ChunkSet, map[string]int, error) {
	dim := s.fixedDim
	inferred := 0
	index := make(map[string]int, len(chunks))
	out := make([]domain.Chunk, len(chunks))

	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" {
			return domain.ChunkSet{}, nil, fmt.Errorf("%w: chunk %d has no ID", errMalformedChunk, i)
		}
		if c.Text == "" {
			return domain.ChunkSet{}, nil, fmt.Errorf("%w: chunk %s has no text", errMalformedChunk, c.ID)
		}
		if err := checkUTF8(c); err != nil {
			return domain.ChunkSet{}, nil, err
		}
		if _, dup := index[c.ID]; dup {
			return domain.ChunkSet{}, nil, fmt.Errorf("%w: duplicate ID %s", errMalformedChunk, c.ID)
		}
		if c.HasEmbedding() {
			n := len(c.Embedding)
			if inferred == 0 {
				inferred = n
			}
			if n != inferred || (dim > 0 && n != dim) {
				want := inferred
				if dim > 0 {
					want = dim
				}
				return domain.ChunkSet{}, nil, fmt.Errorf("%w: chunk %s has %d, want %d",
					errMixedDimensions, c.ID, n, want)
			}
		}
		index[c.ID] = i
		out[i] = c.Clone()
		// Empty and absent are stored alike so a snapshot round-trips exactly.
		if len(out[i].Metadata) == 0 {
			out[i].Metadata = nil
		}
		if len(out[i].Embedding) == 0 {
			out[i].Embedding = nil
		}
	}

	return domain.ChunkSet{Dimension: inferred, Chunks: out}, index, nil
}

// checkUTF8 rejects strings that JSON would rewrite with U+FFFD on save.
func checkUTF8(c *domain.Chunk) error {
	for _, field := range []string{c.ID, c.Text, c.NoteID, c.Section} {
		if !utf8.ValidString(field) {
			return fmt.Errorf("%w: chunk %q is not valid UTF-8", errMalformedChunk, c.ID)
		}
	}
	for k, v := range c.Metadata {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return fmt.Errorf("%w: chunk %q has metadata that is not valid UTF-8", errMalformedChunk, c.ID)
		}
	}
	return nil
}

func (s *ChunkStore) publish(set domain.ChunkSet, index map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set.Version = s.set.Version + 1
	s.set = set
	s.byID = index
}
