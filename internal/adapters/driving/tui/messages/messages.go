// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/storybank/internal/core/domain"
)

// AnswerRequested is a command to answer a question.
type AnswerRequested struct {
	Query string
	K     int
}

// AnswerCompleted carries ranked items back to the model.
type AnswerCompleted struct {
	Query string
	Items []domain.AnswerItem
	Err   error
}

// ItemSelected is sent when an answer item is opened.
type ItemSelected struct {
	Item domain.AnswerItem
}

// ChunkLoaded carries the full stored chunk for an opened item.
type ChunkLoaded struct {
	ChunkID string
	Chunk   *domain.Chunk
	Err     error
}

// CoachCompleted carries the cue for a heard question.
type CoachCompleted struct {
	Heard string
	Cue   *domain.CoachCue
	Err   error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewAsk is the question input and answer list.
	ViewAsk ViewType = iota
	// ViewChunk shows a single story beat in full.
	ViewChunk
	// ViewHelp is the help/keybindings view.
	ViewHelp
	// ViewCoach turns heard questions into what to say next.
	ViewCoach
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewAsk:
		return "ask"
	case ViewChunk:
		return "chunk"
	case ViewHelp:
		return "help"
	case ViewCoach:
		return "coach"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
