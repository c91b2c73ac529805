package domain

import "time"

// ScoredResult pairs a chunk with its similarity to a query.
type ScoredResult struct {
	// Chunk is the ranked chunk.
	Chunk Chunk

	// Score is the cosine similarity in [-1, 1].
	Score float64
}

// AnswerItem is a single retrieval response entry, ready to render.
type AnswerItem struct {
	ChunkID  string            `json:"chunk_id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	NoteID   string            `json:"note_id"`
	Section  string            `json:"section"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	// Notes is the number of notes fetched from the source.
	Notes int

	// Chunks is the number of chunks produced by splitting.
	Chunks int

	// Embedded is the number of chunks that received an embedding.
	Embedded int

	// Dimension is the embedding dimension of the rebuilt store.
	Dimension int

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// FromSnapshot is true when the run fell back to the persisted snapshot.
	FromSnapshot bool
}
