// Package factory builds the configured note source.
package factory

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/storybank/internal/connectors/notesfile"
	"github.com/custodia-labs/storybank/internal/connectors/notion"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

// Builder creates a note source from source settings.
type Builder func(settings domain.SourceSettings) (driven.NoteSource, error)

// Factory maps source types to their builders.
type Factory struct {
	builders map[domain.SourceType]Builder
}

// New creates a factory with the built-in sources registered.
func New() *Factory {
	f := &Factory{builders: make(map[domain.SourceType]Builder)}
	f.Register(domain.SourceTypeFile, buildNotesFile)
	f.Register(domain.SourceTypeNotion, buildNotion)
	return f
}

// Register adds or replaces the builder for a source type.
func (f *Factory) Register(t domain.SourceType, b Builder) {
	f.builders[t] = b
}

// Create returns the note source selected by settings.Type.
// Returns domain.ErrUnsupportedType for unknown types.
func (f *Factory) Create(settings domain.SourceSettings) (driven.NoteSource, error) {
	b, ok := f.builders[settings.Type]
	if !ok {
		return nil, fmt.Errorf("note source %q: %w", settings.Type, domain.ErrUnsupportedType)
	}
	return b(settings)
}

// SupportedTypes returns registered source types, sorted.
func (f *Factory) SupportedTypes() []string {
	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

func buildNotesFile(settings domain.SourceSettings) (driven.NoteSource, error) {
	if settings.NotesFile == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, notesfile.ErrNoPath)
	}
	return notesfile.New(settings.NotesFile), nil
}

func buildNotion(settings domain.SourceSettings) (driven.NoteSource, error) {
	return notion.NewFromSettings(settings.Notion)
}
