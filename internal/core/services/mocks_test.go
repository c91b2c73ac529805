package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockConfigStore implements driven.ConfigStore over a flat map.
type mockConfigStore struct {
	values map[string]any
	path   string
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: map[string]any{}, path: "/home/test/.storybank/config.toml"}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return m.path }

// mockEmbeddingService maps texts to fixed vectors.
type mockEmbeddingService struct {
	mu             sync.Mutex
	vectors        map[string][]float32
	fallback       []float32
	embedErr       error
	dims           int
	calls          int
	batches        [][]string
	blockUntilDone bool
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.blockUntilDone {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, append([]string(nil), texts...))
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return m.dims }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockTranscriber returns a fixed transcript.
type mockTranscriber struct {
	text string
	err  error
	got  string
}

func (m *mockTranscriber) Transcribe(_ context.Context, audio io.Reader, _ string) (string, error) {
	b, _ := io.ReadAll(audio)
	m.got = string(b)
	return m.text, m.err
}

func (m *mockTranscriber) ModelName() string { return "mock-whisper" }
func (m *mockTranscriber) Close() error      { return nil }

// mockNoteSource returns fixed notes.
type mockNoteSource struct {
	notes []domain.Note
	err   error
}

func (m *mockNoteSource) Name() string { return "mock" }

func (m *mockNoteSource) FetchNotes(context.Context) ([]domain.Note, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.notes, nil
}

// mockSnapshot keeps the written chunks in memory.
type mockSnapshot struct {
	chunks   []domain.Chunk
	written  bool
	writeErr error
}

func (m *mockSnapshot) Read(context.Context) ([]domain.Chunk, error) {
	if !m.written {
		return nil, domain.ErrNotFound
	}
	return m.chunks, nil
}

func (m *mockSnapshot) Write(_ context.Context, chunks []domain.Chunk) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.chunks = append([]domain.Chunk(nil), chunks...)
	m.written = true
	return nil
}

func (m *mockSnapshot) Exists() bool { return m.written }

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embedErr error
	llmErr   error
	called   bool
	llm      *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(*domain.EmbeddingSettings) error {
	m.called = true
	return m.embedErr
}

func (m *mockAIValidator) ValidateTranscription(*domain.TranscriptionSettings) error {
	m.called = true
	return nil
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.called = true
	m.llm = cfg
	return m.llmErr
}

// mockRetrieval returns fixed items and records queries.
type mockRetrieval struct {
	items   []domain.AnswerItem
	err     error
	queries []string
}

func (m *mockRetrieval) Answer(_ context.Context, query string, _ int) ([]domain.AnswerItem, error) {
	m.queries = append(m.queries, query)
	return m.items, m.err
}

func (m *mockRetrieval) AnswerAudio(context.Context, io.Reader, string, int) (string, []domain.AnswerItem, error) {
	return "", nil, errors.New("not implemented")
}

// mockLLM returns a fixed reply and records the prompts it was sent.
type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages [][]driven.ChatMessage
	opts     []driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = append(m.messages, messages)
	m.opts = append(m.opts, opts)
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

var (
	_ driving.RetrievalService = (*mockRetrieval)(nil)
	_ driven.LLMService        = (*mockLLM)(nil)
)

var (
	_ driven.ConfigStore       = (*mockConfigStore)(nil)
	_ driven.EmbeddingService  = (*mockEmbeddingService)(nil)
	_ driven.Transcriber       = (*mockTranscriber)(nil)
	_ driven.NoteSource        = (*mockNoteSource)(nil)
	_ driven.SnapshotStore     = (*mockSnapshot)(nil)
	_ driven.AIConfigValidator = (*mockAIValidator)(nil)
)

var errBoom = errors.New("boom")
