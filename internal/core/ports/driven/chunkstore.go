package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// ChunkStore holds the corpus. It is read-mostly: reads may run concurrently,
// Load and Upsert replace the whole chunk set under an exclusive lock.
type ChunkStore interface {
	// Load replaces the store contents with the snapshot read from src.
	// Returns domain.ErrCorruptSnapshot if any chunk lacks an ID or text,
	// IDs collide, or embedded chunks disagree on dimension.
	Load(ctx context.Context, src SnapshotStore) error

	// Save writes the full current contents to dst.
	Save(ctx context.Context, dst SnapshotStore) error

	// Upsert replaces the entire chunk set. Ingestion is a full rebuild.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// All yields stored chunks in insertion order. Each call starts a fresh
	// traversal over the set that was current when iteration began.
	All() iter.Seq[domain.Chunk]

	// Get returns a chunk by ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// Snapshot returns the current immutable chunk set.
	Snapshot() domain.ChunkSet

	// Dimension returns the store-wide embedding size, 0 when nothing is embedded.
	Dimension() int

	// Len returns the number of stored chunks.
	Len() int
}

// SnapshotStore persists a chunk set. The backing format can change
// without touching the store, the index or the services.
type SnapshotStore interface {
	// Read returns the persisted chunks in their stored order.
	// Malformed data is reported as domain.ErrCorruptSnapshot.
	Read(ctx context.Context) ([]domain.Chunk, error)

	// Write replaces the persisted chunks atomically.
	Write(ctx context.Context, chunks []domain.Chunk) error

	// Exists reports whether a snapshot has been written.
	Exists() bool
}
