package driving

import "github.com/custodia-labs/storybank/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the coaching language model.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks if current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateTranscriptionConfig checks that the transcriber can be built.
	ValidateTranscriptionConfig() error

	// ValidateLLMConfig validates the LLM configuration by pinging the provider.
	ValidateLLMConfig() error

	// GetPipelineConfig returns the ingestion post-processor configuration.
	GetPipelineConfig() domain.PipelineConfig

	// Keys lists the settable config keys.
	Keys() []string

	// GetValue returns one stored value, with secrets masked.
	GetValue(key string) (string, bool)

	// SetValue parses and stores one value.
	SetValue(key, raw string) error
}
