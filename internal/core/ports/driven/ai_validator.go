package driven

import "github.com/custodia-labs/storybank/internal/core/domain"

// AIConfigValidator validates AI provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying AI services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateTranscription checks that a transcription configuration can
	// build a client. Returns nil if transcription is not configured.
	ValidateTranscription(config *domain.TranscriptionSettings) error

	// ValidateLLM validates an LLM configuration by pinging the provider.
	// Returns nil if no LLM is configured.
	ValidateLLM(config *domain.LLMSettings) error
}
