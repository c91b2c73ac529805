// Package snapshot persists the chunk corpus as a single JSON file.
//
// The file is replaced atomically on every write (temp file, fsync, rename),
// so readers see either the previous or the new snapshot, never a mix.
// Watch reports replacements so long-running processes can reload.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.SnapshotStore = (*FileStore)(nil)

// FormatVersion is the snapshot schema version written by this package.
const FormatVersion = 1

// document is the on-disk layout.
type document struct {
	Version   int         `json:"version"`
	Dimension int         `json:"dimension"`
	Chunks    []fileChunk `json:"chunks"`
}

type fileChunk struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	NoteID    string            `json:"note_id"`
	Section   string            `json:"section"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// FileStore reads and writes a JSON snapshot at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a snapshot store for path. The file need not exist.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the snapshot file is present.
func (s *FileStore) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Read decodes the snapshot. A missing file is domain.ErrNotFound; an
// undecodable or self-inconsistent file is domain.ErrCorruptSnapshot.
func (s *FileStore) Read(_ context.Context) ([]domain.Chunk, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot %s: %w", s.path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorruptSnapshot, s.path, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", domain.ErrCorruptSnapshot, s.path, doc.Version)
	}

	chunks := make([]domain.Chunk, len(doc.Chunks))
	for i, fc := range doc.Chunks {
		if len(fc.Embedding) > 0 && len(fc.Embedding) != doc.Dimension {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, header says %d",
				domain.ErrCorruptSnapshot, fc.ID, len(fc.Embedding), doc.Dimension)
		}
		chunks[i] = domain.Chunk{
			ID:        fc.ID,
			Text:      fc.Text,
			NoteID:    fc.NoteID,
			Section:   fc.Section,
			Metadata:  fc.Metadata,
			Embedding: fc.Embedding,
		}
	}
	return chunks, nil
}

// Write replaces the snapshot atomically.
func (s *FileStore) Write(_ context.Context, chunks []domain.Chunk) error {
	doc := document{Version: FormatVersion, Chunks: make([]fileChunk, len(chunks))}
	for i := range chunks {
		c := &chunks[i]
		if c.HasEmbedding() && doc.Dimension == 0 {
			doc.Dimension = len(c.Embedding)
		}
		doc.Chunks[i] = fileChunk{
			ID:        c.ID,
			Text:      c.Text,
			NoteID:    c.NoteID,
			Section:   c.Section,
			Metadata:  c.Metadata,
			Embedding: c.Embedding,
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return writeAtomic(s.path, buf.Bytes())
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	committed = true
	return nil
}
