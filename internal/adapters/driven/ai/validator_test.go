package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	v := NewConfigValidator()

	tests := []struct {
		name    string
		config  *domain.EmbeddingSettings
		wantErr bool
	}{
		{"nil config", nil, false},
		{"unconfigured openai is skipped", &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, false},
		{"local always reachable", &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 16}, false},
		{
			"unreachable ollama",
			&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1", Model: "m"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmbedding(tt.config)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigValidator_ValidateTranscription(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateTranscription(&domain.TranscriptionSettings{}))
	assert.NoError(t, v.ValidateTranscription(&domain.TranscriptionSettings{
		Provider: domain.AIProviderOpenAI, APIKey: "sk-test",
	}))

	err := v.ValidateTranscription(&domain.TranscriptionSettings{Provider: domain.AIProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrTranscriptionUnavailable)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{}))

	t.Run("reachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"models":[]}`))
		}))
		t.Cleanup(srv.Close)
		assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL}))
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1"})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("anthropic without key", func(t *testing.T) {
		err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderAnthropic})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
