// Package cache provides a caching decorator for embedding services.
//
// Lookups go through an in-memory LRU, then an optional persistent tier, and
// only then reach the wrapped provider. Caching is sound because embedding
// services are deterministic. Provider errors are returned unchanged and
// never cached.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultSize is the default in-memory LRU capacity.
const DefaultSize = 1024

// Stats reports cache effectiveness.
type Stats struct {
	MemoryHits     int64
	PersistentHits int64
	Misses         int64
}

// EmbeddingService wraps another EmbeddingService with a two-tier cache.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	memory  *lru.Cache[string, []float32]
	persist driven.EmbeddingCache

	memoryHits     atomic.Int64
	persistentHits atomic.Int64
	misses         atomic.Int64
}

// New wraps inner with an LRU of the given size. persist may be nil.
func New(inner driven.EmbeddingService, size int, persist driven.EmbeddingCache) (*EmbeddingService, error) {
	if inner == nil {
		return nil, errors.New("cache: inner embedding service is required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	memory, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &EmbeddingService{inner: inner, memory: memory, persist: persist}, nil
}

// Key returns the cache key for text under the wrapped model. The dimension
// is part of the key because shortened embeddings differ from full ones.
func (s *EmbeddingService) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.inner.ModelName() + "/" + strconv.Itoa(s.inner.Dimensions()) + "/" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text or computes and caches it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.Key(text)
	if vec, ok := s.lookup(ctx, key); ok {
		return vec, nil
	}

	s.misses.Add(1)
	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, vec)
	return clone(vec), nil
}

// EmbedBatch serves cached texts locally and sends only misses to the
// wrapped service, in one batch, preserving input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = s.Key(text)
		if vec, ok := s.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	s.misses.Add(int64(len(missTexts)))
	logger.Debug("Embedding cache: %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))

	vecs, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("cache: provider returned %d embeddings for %d texts", len(vecs), len(missTexts))
	}

	for j, i := range missIdx {
		s.store(ctx, keys[i], vecs[j])
		out[i] = clone(vecs[j])
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service and the persistent tier.
func (s *EmbeddingService) Close() error {
	var errs []error
	if err := s.inner.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.persist != nil {
		if err := s.persist.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stats returns hit and miss counters.
func (s *EmbeddingService) Stats() Stats {
	return Stats{
		MemoryHits:     s.memoryHits.Load(),
		PersistentHits: s.persistentHits.Load(),
		Misses:         s.misses.Load(),
	}
}

// lookup checks both tiers. A persistent hit is promoted into memory.
// Persistent tier failures degrade to a miss.
func (s *EmbeddingService) lookup(ctx context.Context, key string) ([]float32, bool) {
	if vec, ok := s.memory.Get(key); ok {
		s.memoryHits.Add(1)
		return clone(vec), true
	}
	if s.persist == nil {
		return nil, false
	}

	vec, ok, err := s.persist.Get(ctx, key)
	if err != nil {
		logger.Warn("Embedding cache read failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	s.persistentHits.Add(1)
	s.memory.Add(key, vec)
	return clone(vec), true
}

// store writes a fresh vector to both tiers. Empty vectors are not cached so
// a malformed provider response is never replayed.
func (s *EmbeddingService) store(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	vec = clone(vec)
	s.memory.Add(key, vec)
	if s.persist != nil {
		if err := s.persist.Put(ctx, key, s.inner.ModelName(), vec); err != nil {
			logger.Warn("Embedding cache write failed: %v", err)
		}
	}
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
