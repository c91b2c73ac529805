// Package chunker splits notes into one chunk per named section.
package chunker

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// Namespace is the default UUIDv5 namespace for chunk IDs.
var Namespace = uuid.MustParse("6f1c8a52-3d0e-5b7a-9c44-2e8b1f0d7a31")

// Processor turns each non-blank section of a note into a chunk.
// It implements the PostProcessor interface.
type Processor struct {
	namespace uuid.UUID
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithNamespace sets the UUIDv5 namespace used to derive chunk IDs.
func WithNamespace(ns uuid.UUID) Option {
	return func(p *Processor) {
		if ns != uuid.Nil {
			p.namespace = ns
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{namespace: Namespace}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the note into chunks.
// Input chunks are ignored; this processor creates new chunks from note sections.
// Blank sections are dropped, so a note without sections yields no chunks.
func (p *Processor) Process(_ context.Context, note *domain.Note, _ []domain.Chunk) ([]domain.Chunk, error) {
	if len(note.Sections) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(note.Sections))
	for i, section := range note.Sections {
		if strings.TrimSpace(section.Text) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:       p.ChunkID(note.ID, section.Name, i),
			Text:     section.Text,
			NoteID:   note.ID,
			Section:  section.Name,
			Metadata: domain.CloneMetadata(note.Metadata),
		})
	}
	return chunks, nil
}

// ChunkID derives the stable ID of the ordinal-th section of a note.
// Re-ingesting an unchanged note reproduces the same IDs.
func (p *Processor) ChunkID(noteID, section string, ordinal int) string {
	name := noteID + "\x00" + section + "\x00" + strconv.Itoa(ordinal)
	return uuid.NewSHA1(p.namespace, []byte(name)).String()
}
