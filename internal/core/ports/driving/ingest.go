package driving

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// IngestService rebuilds the corpus from the note source.
type IngestService interface {
	// Run fetches, splits, embeds, stores and persists all notes.
	Run(ctx context.Context) (*domain.IngestReport, error)

	// Refresh runs ingestion and falls back to the persisted snapshot on failure.
	Refresh(ctx context.Context) (*domain.IngestReport, error)

	// LoadSnapshot populates the store from the persisted snapshot only.
	LoadSnapshot(ctx context.Context) (*domain.IngestReport, error)
}
