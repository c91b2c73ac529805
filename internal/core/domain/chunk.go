package domain

// Note is a structured note as supplied by a note source.
// It is the input to ingestion and is never stored directly.
type Note struct {
	// ID is the note identifier in the source system.
	ID string

	// Title is the human-readable note title.
	Title string

	// Metadata holds note-level tags (project, topic, tags, ...).
	// It is copied onto every chunk produced from the note.
	Metadata map[string]string

	// Sections are the named fragments of the note, in order.
	Sections []Section
}

// Section is a named fragment of a note.
// Names are note-defined ("Beat 1", "metric", "action"), not an enum.
type Section struct {
	Name string
	Text string
}

// Chunk is the retrievable unit of the corpus.
type Chunk struct {
	// ID is stable and unique across the store. Assigned at ingestion.
	ID string

	// Text is the literal fragment content. Never empty.
	Text string

	// NoteID links to the parent note. Shared by all chunks of a note.
	NoteID string

	// Section is the fragment's label within its note.
	Section string

	// Metadata is the note-level tag map, denormalised onto the chunk.
	Metadata map[string]string

	// Embedding is the vector representation, or nil when not yet computed.
	Embedding []float32
}

// HasEmbedding reports whether the chunk can be ranked.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Clone returns a deep copy of the chunk.
func (c *Chunk) Clone() Chunk {
	out := *c
	out.Metadata = CloneMetadata(c.Metadata)
	if c.Embedding != nil {
		out.Embedding = make([]float32, len(c.Embedding))
		copy(out.Embedding, c.Embedding)
	}
	return out
}

// CloneMetadata copies a metadata map. A nil map stays nil.
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ChunkSet is an immutable view of the store contents at one point in time.
// Published sets are never modified; a rebuild publishes a new set.
type ChunkSet struct {
	// Version increases with every published set.
	Version uint64

	// Dimension is the store-wide embedding size, or 0 when no chunk is embedded.
	Dimension int

	// Chunks are in insertion order.
	Chunks []Chunk
}

// Embedded returns the number of chunks carrying an embedding.
func (s ChunkSet) Embedded() int {
	n := 0
	for i := range s.Chunks {
		if s.Chunks[i].HasEmbedding() {
			n++
		}
	}
	return n
}
