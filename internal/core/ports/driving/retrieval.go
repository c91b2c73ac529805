package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// RetrievalService answers natural-language queries with ranked story beats.
type RetrievalService interface {
	// Answer embeds rawQuery and returns up to k ranked items.
	// Blank queries fail with domain.ErrEmptyQuery before any downstream call.
	Answer(ctx context.Context, rawQuery string, k int) ([]domain.AnswerItem, error)

	// AnswerAudio transcribes audio and answers the transcript.
	// It returns the transcript alongside the items.
	AnswerAudio(ctx context.Context, audio io.Reader, name string, k int) (string, []domain.AnswerItem, error)
}

// ChunkService exposes read access to the stored corpus.
type ChunkService interface {
	// Get retrieves a chunk by ID.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// List returns chunks in insertion order, optionally filtered by note.
	List(ctx context.Context, noteID string) ([]domain.Chunk, error)

	// Stats describes the current corpus.
	Stats(ctx context.Context) domain.IngestReport
}
