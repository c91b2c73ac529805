// Package notesfile reads story notes from local files.
//
// The path is either a YAML document with a top-level "notes" list, or a
// directory of markdown files with optional YAML front matter. Notes given
// as a free-form body are split with connectors.ParseNote; notes with an
// explicit sections list are taken as written.
package notesfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/storybank/internal/connectors"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.NoteSource = (*Source)(nil)

// ErrNoPath is returned when no notes path is configured.
var ErrNoPath = errors.New("notesfile: path is required")

// Document is the YAML notes file layout.
type Document struct {
	Notes []Entry `yaml:"notes"`
}

// Entry is one note in a notes file or one markdown file's front matter.
type Entry struct {
	ID       string            `yaml:"id"`
	Title    string            `yaml:"title"`
	Tags     []string          `yaml:"tags,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
	Sections []SectionEntry    `yaml:"sections,omitempty"`
	Body     string            `yaml:"body,omitempty"`
}

// SectionEntry is an explicitly named section.
type SectionEntry struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Source reads notes from a YAML file or a markdown directory.
type Source struct {
	path string
}

// New creates a source for path.
func New(path string) *Source {
	return &Source{path: path}
}

// Name returns the source name.
func (s *Source) Name() string {
	return string(domain.SourceTypeFile)
}

// Path returns the configured path.
func (s *Source) Path() string {
	return s.path
}

// FetchNotes reads every note under the configured path.
func (s *Source) FetchNotes(ctx context.Context) ([]domain.Note, error) {
	if s.path == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrNoPath)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	var entries []Entry
	if info.IsDir() {
		entries, err = readDir(ctx, s.path)
	} else {
		entries, err = readYAML(s.path)
	}
	if err != nil {
		return nil, err
	}

	notes, err := toNotes(entries)
	if err != nil {
		return nil, err
	}
	logger.Info("notesfile: %d notes from %s", len(notes), s.path)
	return notes, nil
}

func readYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, path, err)
	}
	return doc.Notes, nil
}

// readDir reads *.md files in name order. The file name without extension
// is the default ID and title.
func readDir(ctx context.Context, dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".md") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}

		entry, err := parseMarkdown(string(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
		}
		base := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if entry.ID == "" {
			entry.ID = base
		}
		if entry.Title == "" {
			entry.Title = base
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseMarkdown splits optional "---" delimited front matter from the body.
func parseMarkdown(content string) (Entry, error) {
	var entry Entry
	front, body, ok := splitFrontMatter(content)
	if ok {
		if err := yaml.Unmarshal([]byte(front), &entry); err != nil {
			return Entry{}, fmt.Errorf("front matter: %w", err)
		}
	}
	if strings.TrimSpace(entry.Body) == "" {
		entry.Body = body
	}
	return entry, nil
}

func splitFrontMatter(content string) (front, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}
	rest := content[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") {
		return "", rest[len("---\n"):], true
	}
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		if strings.HasSuffix(rest, "\n---") {
			return rest[:len(rest)-len("\n---")], "", true
		}
		return "", content, false
	}
	return rest[:end], rest[end+len("\n---\n"):], true
}

func toNotes(entries []Entry) ([]domain.Note, error) {
	notes := make([]domain.Note, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			id = strings.TrimSpace(e.Title)
		}
		if id == "" {
			return nil, fmt.Errorf("%w: note %d has neither id nor title", domain.ErrInvalidInput, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate note id %q", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		notes = append(notes, entryToNote(id, e))
	}
	return notes, nil
}

func entryToNote(id string, e Entry) domain.Note {
	var note domain.Note
	if len(e.Sections) > 0 {
		note = domain.Note{
			ID:       id,
			Title:    strings.TrimSpace(e.Title),
			Metadata: connectors.TitleMetadata(e.Title),
			Sections: make([]domain.Section, 0, len(e.Sections)),
		}
		for _, s := range e.Sections {
			note.Sections = append(note.Sections, domain.Section{
				Name: strings.TrimSpace(s.Name),
				Text: strings.TrimSpace(s.Text),
			})
		}
	} else {
		note = connectors.ParseNote(id, e.Title, e.Body)
	}

	for k, v := range e.Metadata {
		note.Metadata[k] = v
	}
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > 0 {
		note.Metadata[connectors.MetaTags] = strings.Join(tags, ", ")
	}
	return note
}
