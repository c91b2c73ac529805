package driven

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// PostProcessor turns a note into chunks or refines existing chunks.
// PostProcessors are chained in a pipeline (splitting, whitespace cleanup).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a note and returns chunks.
	// If the processor creates chunks (e.g., chunker), it receives nil and returns new chunks.
	// If the processor modifies chunks, it receives and returns chunks.
	Process(ctx context.Context, note *domain.Note, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the note through all processors in order.
	Process(ctx context.Context, note *domain.Note) ([]domain.Chunk, error)
}
