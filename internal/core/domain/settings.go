package domain

import (
	"path/filepath"
	"slices"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, transcription
// or coaching.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. No network, no model.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. Coaching only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderLocal || p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local (feature hashing, offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// SourceType identifies where notes are ingested from.
type SourceType string

// Available note sources.
const (
	// SourceTypeNotion pulls notes from a Notion database or page relation.
	SourceTypeNotion SourceType = "notion"

	// SourceTypeFile reads notes from a local YAML file.
	SourceTypeFile SourceType = "file"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	return t == SourceTypeNotion || t == SourceTypeFile
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int

	// BatchSize caps the number of texts per EmbedBatch call during ingestion.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !slices.Contains(AllEmbeddingProviders(), e.Provider) {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// TranscriptionSettings holds speech-to-text configuration.
type TranscriptionSettings struct {
	// Provider is the transcription provider. Only OpenAI is supported.
	Provider AIProvider

	// Model is the transcription model (default whisper-1).
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// Language is an optional ISO-639-1 hint.
	Language string
}

// IsConfigured returns true if transcription is set up.
func (t TranscriptionSettings) IsConfigured() bool {
	return t.Provider == AIProviderOpenAI && t.APIKey != ""
}

// NotionSettings configures the Notion note source.
type NotionSettings struct {
	// Token is the Notion integration secret.
	Token string

	// DatabaseID selects notes by querying a database.
	DatabaseID string

	// PageID selects notes through a relation property on a page.
	PageID string

	// RelationProperty is the relation property name on PageID.
	RelationProperty string

	// TitleProperty is the title property name on each note page.
	TitleProperty string

	// RequestsPerSecond throttles Notion API calls.
	RequestsPerSecond float64
}

// LLMSettings holds the language model used for coaching.
type LLMSettings struct {
	// Provider is the LLM service provider. Empty disables generation.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !slices.Contains(AllLLMProviders(), l.Provider) {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CoachSettings tunes the live coaching layer.
type CoachSettings struct {
	// MaxTokens caps the length of a generated answer.
	MaxTokens int

	// Timeout bounds one generation call. On expiry the cue falls back
	// to text taken from the beat itself.
	Timeout time.Duration

	// CacheSize is the number of generated answers kept in memory.
	CacheSize int

	// Persona describes the speaker so answers use their background.
	Persona string
}

// SourceSettings holds note source configuration.
type SourceSettings struct {
	// Type selects the note source.
	Type SourceType

	// NotesFile is the YAML notes file for SourceTypeFile.
	NotesFile string

	// Notion configures SourceTypeNotion.
	Notion NotionSettings
}

// RetrievalSettings holds query behaviour configuration.
type RetrievalSettings struct {
	// DefaultK is the result count when the caller does not specify one.
	DefaultK int

	// Timeout bounds a single Answer call including the embedding request.
	Timeout time.Duration
}

// CacheSettings configures the embedding cache.
type CacheSettings struct {
	// Enabled turns the cache on.
	Enabled bool

	// Size is the in-memory LRU capacity.
	Size int

	// Persistent adds the SQLite tier under the data directory.
	Persistent bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir holds the snapshot and the embedding cache database.
	DataDir string

	// SnapshotFile is the snapshot file name inside DataDir.
	SnapshotFile string

	// ServerAddr is the listen address for the HTTP server.
	ServerAddr string

	Embedding     EmbeddingSettings
	Transcription TranscriptionSettings
	LLM           LLMSettings
	Coach         CoachSettings
	Source        SourceSettings
	Retrieval     RetrievalSettings
	Cache         CacheSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The local embedder works out-of-the-box; cloud providers need configuration.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		SnapshotFile: "chunks.json",
		ServerAddr:   ":5000",
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: 384,
			BatchSize:  32,
		},
		Transcription: TranscriptionSettings{
			Model: "whisper-1",
		},
		Coach: CoachSettings{
			MaxTokens: 200,
			Timeout:   10 * time.Second,
			CacheSize: 256,
		},
		Source: SourceSettings{
			Type: SourceTypeFile,
			Notion: NotionSettings{
				RelationProperty:  "Add a note",
				TitleProperty:     "Name",
				RequestsPerSecond: 3,
			},
		},
		Retrieval: RetrievalSettings{
			DefaultK: 5,
			Timeout:  2 * time.Second,
		},
		Cache: CacheSettings{
			Enabled:    true,
			Size:       1024,
			Persistent: true,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-v1",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// AllLLMProviders returns providers that can generate coaching answers.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-haiku-4-5",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig lists the ingestion post-processors and their options.
type PipelineConfig struct {
	// Processors run in order. The first must create chunks from sections.
	Processors []string

	// ProcessorConfigs holds per-processor options keyed by processor name.
	ProcessorConfigs map[string]map[string]any
}

// DefaultPipelineConfig returns the standard section-splitting pipeline.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "whitespace"},
	}
}

// SnapshotPath returns the snapshot file location. An absolute SnapshotFile
// is used as is.
func (a AppSettings) SnapshotPath() string {
	if filepath.IsAbs(a.SnapshotFile) || a.DataDir == "" {
		return a.SnapshotFile
	}
	return filepath.Join(a.DataDir, a.SnapshotFile)
}
