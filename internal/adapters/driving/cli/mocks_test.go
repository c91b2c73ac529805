package cli

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

// mockRetrievalService implements driving.RetrievalService for testing.
type mockRetrievalService struct {
	items      []domain.AnswerItem
	transcript string
	err        error
	lastQuery  string
	lastK      int
	lastName   string
	lastAudio  []byte
}

func (m *mockRetrievalService) Answer(_ context.Context, query string, k int) ([]domain.AnswerItem, error) {
	m.lastQuery = query
	m.lastK = k
	return m.items, m.err
}

func (m *mockRetrievalService) AnswerAudio(
	_ context.Context,
	audio io.Reader,
	name string,
	k int,
) (string, []domain.AnswerItem, error) {
	data, _ := io.ReadAll(audio)
	m.lastAudio = data
	m.lastName = name
	m.lastK = k
	return m.transcript, m.items, m.err
}

// mockChunkService implements driving.ChunkService for testing.
type mockChunkService struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockChunkService) Get(_ context.Context, id string) (*domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			c := m.chunks[i].Clone()
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChunkService) List(_ context.Context, noteID string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Chunk{}
	for i := range m.chunks {
		if noteID == "" || m.chunks[i].NoteID == noteID {
			out = append(out, m.chunks[i])
		}
	}
	return out, nil
}

func (m *mockChunkService) Stats(_ context.Context) domain.IngestReport {
	return domain.IngestReport{Notes: 2, Chunks: len(m.chunks), Embedded: len(m.chunks), Dimension: 3}
}

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	report       *domain.IngestReport
	err          error
	runCalls     int
	refreshCalls int
	loadCalls    int
	loaded       chan struct{}
}

func (m *mockIngestService) Run(_ context.Context) (*domain.IngestReport, error) {
	m.runCalls++
	return m.report, m.err
}

func (m *mockIngestService) Refresh(_ context.Context) (*domain.IngestReport, error) {
	m.refreshCalls++
	return m.report, m.err
}

func (m *mockIngestService) LoadSnapshot(_ context.Context) (*domain.IngestReport, error) {
	m.loadCalls++
	if m.loaded != nil {
		m.loaded <- struct{}{}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.IngestReport{Chunks: 2, FromSnapshot: true}, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings    domain.AppSettings
	values      map[string]string
	validateErr error
	setErr      error
	provider    domain.AIProvider
	model       string
	apiKey      string
	llmProvider domain.AIProvider
	llmModel    string
	llmKey      string
	llmErr      error
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   map[string]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider = provider
	m.model = model
	m.apiKey = apiKey
	return m.setErr
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmProvider = provider
	m.llmModel = model
	m.llmKey = apiKey
	return m.setErr
}

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

func (m *mockSettingsService) Validate() error                    { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings    { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error     { return m.validateErr }
func (m *mockSettingsService) ValidateTranscriptionConfig() error { return nil }
func (m *mockSettingsService) GetPipelineConfig() domain.PipelineConfig {
	return domain.DefaultPipelineConfig()
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.provider", "retrieval.default_k"}
}

func (m *mockSettingsService) GetValue(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettingsService) SetValue(key, raw string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = raw
	return nil
}

// mockCoachService implements driving.CoachService for testing.
type mockCoachService struct {
	cue    *domain.CoachCue
	err    error
	heard  []string
	resets int
}

func (m *mockCoachService) Coach(_ context.Context, heard string) (*domain.CoachCue, error) {
	m.heard = append(m.heard, heard)
	if m.err != nil {
		return nil, m.err
	}
	return m.cue, nil
}

func (m *mockCoachService) Reset() { m.resets++ }

func testCue() *domain.CoachCue {
	return &domain.CoachCue{
		Question:  "Tell me about the outage",
		NoteID:    "n1",
		Project:   "Acme",
		Topic:     "Outage",
		Fit:       "incident · ops",
		Beat:      "Situation",
		BeatNum:   1,
		Total:     3,
		Next:      "Tension",
		Response:  "We lost $2M in 20 minutes. I ran the bridge.",
		Generated: true,
	}
}

// mockWatcher implements SnapshotWatcher for testing.
type mockWatcher struct {
	changes chan struct{}
	err     error
}

func (m *mockWatcher) Watch(_ context.Context, _ time.Duration) (<-chan struct{}, error) {
	return m.changes, m.err
}

func testItems() []domain.AnswerItem {
	return []domain.AnswerItem{
		{
			ChunkID:  "c1",
			Text:     "Lost $2M in 20 minutes",
			Score:    0.912,
			NoteID:   "n1",
			Section:  "Beat 1",
			Metadata: map[string]string{"title": "Acme: Outage"},
		},
		{ChunkID: "c2", Text: "Hired a team of five", Score: 0.31, NoteID: "n2", Section: "Overview"},
	}
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", NoteID: "n1", Section: "Beat 1", Text: "Lost $2M in 20 minutes",
			Metadata: map[string]string{"title": "Acme: Outage", "project": "Acme"}, Embedding: []float32{1, 0, 0}},
		{ID: "c2", NoteID: "n2", Section: "Overview", Text: "Hired a team of five", Embedding: []float32{0, 1, 0}},
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	retrieval *mockRetrievalService
	chunks    *mockChunkService
	ingest    *mockIngestService
	coach     *mockCoachService
	settings  *mockSettingsService
}

// setupTestServices installs mocks and returns a cleanup restoring the
// previous services.
func setupTestServices() (*testServices, func()) {
	oldRetrieval, oldChunks, oldIngest, oldSettings := retrievalService, chunkService, ingestService, settingsService
	oldCoach := coachService
	oldWatcher, oldBootstrap := snapshotWatcher, bootstrap

	ts := &testServices{
		retrieval: &mockRetrievalService{items: testItems()},
		chunks:    &mockChunkService{chunks: testChunks()},
		ingest:    &mockIngestService{report: &domain.IngestReport{Notes: 2, Chunks: 3, Embedded: 3, Dimension: 384}},
		coach:     &mockCoachService{cue: testCue()},
		settings:  newMockSettingsService(),
	}
	retrievalService = ts.retrieval
	chunkService = ts.chunks
	ingestService = ts.ingest
	coachService = ts.coach
	settingsService = ts.settings
	snapshotWatcher = nil
	bootstrap = nil

	return ts, func() {
		retrievalService, chunkService, ingestService, settingsService = oldRetrieval, oldChunks, oldIngest, oldSettings
		snapshotWatcher, bootstrap = oldWatcher, oldBootstrap
		coachService = oldCoach
	}
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
