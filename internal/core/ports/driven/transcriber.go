package driven

import (
	"context"
	"io"
)

// Transcriber converts recorded speech into text.
// Its output feeds RetrievalService.Answer as the raw query.
type Transcriber interface {
	// Transcribe returns the text heard in audio. name carries the file
	// name so the provider can infer the audio format.
	Transcribe(ctx context.Context, audio io.Reader, name string) (string, error)

	// ModelName returns the transcription model in use.
	ModelName() string

	// Close releases resources.
	Close() error
}
