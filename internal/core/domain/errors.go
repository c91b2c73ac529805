package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown provider or source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Retrieval Errors.

	// ErrCorruptSnapshot indicates persisted chunk data is malformed or
	// dimension-inconsistent. Re-running ingestion rebuilds it.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrDimensionMismatch indicates a vector whose length disagrees with the
	// store dimension. Usually an embedding model/version mismatch.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyQuery indicates a blank query was submitted.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmbeddingUnavailable indicates the embedding service failed, is not
	// configured, or returned a malformed vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Collaborator Errors.

	// ErrTranscriptionUnavailable indicates the speech-to-text service failed
	// or is not configured.
	ErrTranscriptionUnavailable = errors.New("transcription service unavailable")

	// ErrSourceUnavailable indicates the note source could not be read.
	ErrSourceUnavailable = errors.New("note source unavailable")

	// ErrLLMUnavailable indicates the coaching language model failed or is
	// not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Coaching Errors.

	// ErrNotAQuestion indicates heard text does not look like a question,
	// so no story is picked for it.
	ErrNotAQuestion = errors.New("not a question")
)
