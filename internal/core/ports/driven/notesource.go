package driven

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// NoteSource supplies structured notes for ingestion.
// Implementations fetch the full note set on every call.
type NoteSource interface {
	// Name identifies the source for logging.
	Name() string

	// FetchNotes returns every note with its title, tags and ordered sections.
	FetchNotes(ctx context.Context) ([]domain.Note, error)
}
