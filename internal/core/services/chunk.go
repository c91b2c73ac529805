package services

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// Ensure ChunkService implements the interface.
var _ driving.ChunkService = (*ChunkService)(nil)

// ChunkService provides read access to stored chunks.
type ChunkService struct {
	store driven.ChunkStore
}

// NewChunkService creates a new chunk service.
func NewChunkService(store driven.ChunkStore) *ChunkService {
	return &ChunkService{store: store}
}

// Get retrieves a chunk by ID.
func (s *ChunkService) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.Get(ctx, id)
}

// List returns chunks in insertion order. An empty noteID lists everything.
func (s *ChunkService) List(ctx context.Context, noteID string) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for c := range s.store.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if noteID == "" || c.NoteID == noteID {
			out = append(out, c)
		}
	}
	if out == nil {
		out = []domain.Chunk{}
	}
	return out, nil
}

// Stats counts notes, chunks and embedded chunks in the current set.
func (s *ChunkService) Stats(_ context.Context) domain.IngestReport {
	return statsOf(s.store.Snapshot())
}

func statsOf(set domain.ChunkSet) domain.IngestReport {
	notes := make(map[string]struct{})
	report := domain.IngestReport{
		Chunks:    len(set.Chunks),
		Embedded:  set.Embedded(),
		Dimension: set.Dimension,
	}
	for i := range set.Chunks {
		notes[set.Chunks[i].NoteID] = struct{}{}
	}
	report.Notes = len(notes)
	return report
}
