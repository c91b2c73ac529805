package driving

import (
	"context"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// CoachService turns heard questions into story cues. It remembers the
// story being told, so a follow-up question moves on to the next beat
// instead of searching again.
type CoachService interface {
	// Coach answers one heard question. Text that does not look like a
	// question fails with domain.ErrNotAQuestion and leaves the session
	// untouched.
	Coach(ctx context.Context, heard string) (*domain.CoachCue, error)

	// Reset forgets the current story.
	Reset()
}
