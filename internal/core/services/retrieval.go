package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultK is the result count used when the caller passes k == 0.
const DefaultK = 5

// RetrievalService embeds a query and ranks stored chunks against it.
type RetrievalService struct {
	embedder    driven.EmbeddingService
	index       driven.SimilarityIndex
	store       driven.ChunkStore
	transcriber driven.Transcriber
	timeout     time.Duration
	defaultK    int
}

// NewRetrievalService creates a retrieval service.
// The store is consulted only for its dimension.
func NewRetrievalService(
	embedder driven.EmbeddingService,
	index driven.SimilarityIndex,
	store driven.ChunkStore,
) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		index:    index,
		store:    store,
		defaultK: DefaultK,
	}
}

// SetTranscriber enables AnswerAudio.
func (s *RetrievalService) SetTranscriber(t driven.Transcriber) {
	s.transcriber = t
}

// SetTimeout bounds each Answer call. Zero disables the bound.
func (s *RetrievalService) SetTimeout(d time.Duration) {
	s.timeout = d
}

// SetDefaultK sets the result count used for k == 0.
func (s *RetrievalService) SetDefaultK(k int) {
	if k > 0 {
		s.defaultK = k
	}
}

// Answer returns up to k chunks ranked by similarity to rawQuery.
// Negative k is domain.ErrInvalidInput and, like an empty query, is rejected
// before the embedder is called.
func (s *RetrievalService) Answer(ctx context.Context, rawQuery string, k int) ([]domain.AnswerItem, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if err := checkK(k); err != nil {
		return nil, err
	}
	if k == 0 {
		k = s.defaultK
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	logger.Section("Answer")
	logger.Debug("Query: %q, k=%d", query, k)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := logger.Timed("embed query")
	vec, err := s.embedder.Embed(ctx, query)
	done()

	// Cancellation while embedding wins over whatever the embedder returned.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if err := s.checkVector(vec); err != nil {
		return nil, err
	}

	results, err := s.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	items := make([]domain.AnswerItem, 0, len(results))
	for _, r := range results {
		items = append(items, domain.AnswerItem{
			ChunkID:  r.Chunk.ID,
			Text:     r.Chunk.Text,
			Score:    r.Score,
			NoteID:   r.Chunk.NoteID,
			Section:  r.Chunk.Section,
			Metadata: domain.CloneMetadata(r.Chunk.Metadata),
		})
	}
	logger.Info("Answer: %d results for %q", len(items), query)
	return items, nil
}

// checkVector rejects empty vectors and vectors whose length disagrees
// with the store or with the embedder's declared size.
func (s *RetrievalService) checkVector(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector", domain.ErrEmbeddingUnavailable)
	}
	want := 0
	if s.store != nil {
		want = s.store.Dimension()
	}
	if want == 0 {
		want = s.embedder.Dimensions()
	}
	if want > 0 && len(vec) != want {
		return fmt.Errorf("%w: %w: got %d, want %d",
			domain.ErrEmbeddingUnavailable, domain.ErrDimensionMismatch, len(vec), want)
	}
	return nil
}

func checkK(k int) error {
	if k < 0 {
		return fmt.Errorf("%w: k must not be negative, got %d", domain.ErrInvalidInput, k)
	}
	return nil
}

// AnswerAudio transcribes audio and answers the transcript.
// The transcript is returned even when answering fails.
func (s *RetrievalService) AnswerAudio(
	ctx context.Context, audio io.Reader, name string, k int,
) (string, []domain.AnswerItem, error) {
	if err := checkK(k); err != nil {
		return "", nil, err
	}
	if s.transcriber == nil {
		return "", nil, fmt.Errorf("%w: no transcriber configured", domain.ErrTranscriptionUnavailable)
	}

	done := logger.Timed("transcribe")
	text, err := s.transcriber.Transcribe(ctx, audio, name)
	done()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", nil, ctxErr
		}
		return "", nil, fmt.Errorf("%w: %w", domain.ErrTranscriptionUnavailable, err)
	}
	logger.Debug("Transcript: %q", text)

	items, err := s.Answer(ctx, text, k)
	return text, items, err
}
