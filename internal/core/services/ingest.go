package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultBatchSize is the number of texts per EmbedBatch call.
const DefaultBatchSize = 32

// IngestService rebuilds the chunk store from a note source.
type IngestService struct {
	source    driven.NoteSource
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	store     driven.ChunkStore
	snapshot  driven.SnapshotStore
	batchSize int
}

// NewIngestService creates a new ingest service.
// The snapshot store is optional; without it Run does not persist.
func NewIngestService(
	source driven.NoteSource,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.ChunkStore,
	snapshot driven.SnapshotStore,
) *IngestService {
	return &IngestService{
		source:    source,
		pipeline:  pipeline,
		embedder:  embedder,
		store:     store,
		snapshot:  snapshot,
		batchSize: DefaultBatchSize,
	}
}

// SetBatchSize sets the EmbedBatch size. Non-positive values are ignored.
func (s *IngestService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// Run fetches every note, splits it, embeds the chunks, replaces the store
// contents and writes the snapshot. The store is untouched on failure.
func (s *IngestService) Run(ctx context.Context) (*domain.IngestReport, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no note source configured", domain.ErrSourceUnavailable)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingUnavailable)
	}

	logger.Section("Ingest")
	start := time.Now()

	done := logger.Timed("fetch notes from " + s.source.Name())
	notes, err := s.source.FetchNotes(ctx)
	done()
	if err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}

	var chunks []domain.Chunk
	for i := range notes {
		noteChunks, err := s.pipeline.Process(ctx, &notes[i])
		if err != nil {
			return nil, fmt.Errorf("split note %s: %w", notes[i].ID, err)
		}
		logger.Debug("%s: %d chunks", notes[i].Title, len(noteChunks))
		chunks = append(chunks, noteChunks...)
	}

	dim, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	if s.snapshot != nil {
		if err := s.store.Save(ctx, s.snapshot); err != nil {
			return nil, fmt.Errorf("save snapshot: %w", err)
		}
	}

	report := &domain.IngestReport{
		Notes:     len(notes),
		Chunks:    len(chunks),
		Embedded:  len(chunks),
		Dimension: dim,
		Duration:  time.Since(start),
	}
	logger.Info("Ingested %d notes into %d chunks (dimension %d) in %s",
		report.Notes, report.Chunks, report.Dimension, report.Duration.Round(time.Millisecond))
	return report, nil
}

// embed attaches embeddings to chunks in place, batchSize texts at a time,
// and returns the common dimension.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) (int, error) {
	done := logger.Timed(fmt.Sprintf("embed %d chunks with %s", len(chunks), s.embedder.ModelName()))
	defer done()

	dim := 0
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, chunks[i].Text)
		}

		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, ctxErr
			}
			return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vecs) != len(texts) {
			return 0, fmt.Errorf("%w: got %d vectors for %d texts",
				domain.ErrEmbeddingUnavailable, len(vecs), len(texts))
		}

		for i, vec := range vecs {
			if len(vec) == 0 {
				return 0, fmt.Errorf("%w: empty vector for chunk %s",
					domain.ErrEmbeddingUnavailable, chunks[start+i].ID)
			}
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) != dim {
				return 0, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
					domain.ErrDimensionMismatch, chunks[start+i].ID, len(vec), dim)
			}
			chunks[start+i].Embedding = vec
		}
	}

	if want := s.embedder.Dimensions(); dim != 0 && want > 0 && dim != want {
		return 0, fmt.Errorf("%w: model %s returned %d dimensions, configured %d",
			domain.ErrDimensionMismatch, s.embedder.ModelName(), dim, want)
	}
	return dim, nil
}

// Refresh runs ingestion and, if it fails for any reason other than
// cancellation, loads the persisted snapshot instead.
func (s *IngestService) Refresh(ctx context.Context) (*domain.IngestReport, error) {
	report, err := s.Run(ctx)
	if err == nil {
		return report, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, err
	}

	logger.Warn("Sync failed, loading snapshot: %v", err)
	report, loadErr := s.LoadSnapshot(ctx)
	if loadErr != nil {
		return nil, errors.Join(err, loadErr)
	}
	return report, nil
}

// LoadSnapshot replaces the store contents with the persisted snapshot.
func (s *IngestService) LoadSnapshot(ctx context.Context) (*domain.IngestReport, error) {
	if s.snapshot == nil || !s.snapshot.Exists() {
		return nil, fmt.Errorf("load snapshot: %w", domain.ErrNotFound)
	}

	start := time.Now()
	if err := s.store.Load(ctx, s.snapshot); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	report := statsOf(s.store.Snapshot())
	report.Duration = time.Since(start)
	report.FromSnapshot = true
	logger.Info("Loaded %d chunks from snapshot", report.Chunks)
	return &report, nil
}
