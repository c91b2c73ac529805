package ai

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/storybank/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/storybank/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/storybank/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/openai"
	openaitranscribe "github.com/custodia-labs/storybank/internal/adapters/driven/transcription/openai"
	"github.com/custodia-labs/storybank/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantErr  error
	}{
		{
			name:     "local",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderLocal, Dimensions: 64},
			wantType: &hashing.EmbeddingService{},
		},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"},
			wantType: &ollamaembed.EmbeddingService{},
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-test",
			},
			wantType: &openaiembed.EmbeddingService{},
		},
		{
			name:     "unsupported",
			settings: &domain.EmbeddingSettings{Provider: "carrier-pigeon"},
		},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
		},
		{
			name: "nil settings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantType == nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
			assert.NoError(t, svc.Close())
		})
	}
}

func TestCreateTranscriber(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		tr, err := CreateTranscriber(&domain.TranscriptionSettings{})
		assert.NoError(t, err)
		assert.Nil(t, tr)

		tr, err = CreateTranscriber(nil)
		assert.NoError(t, err)
		assert.Nil(t, tr)
	})

	t.Run("openai", func(t *testing.T) {
		tr, err := CreateTranscriber(&domain.TranscriptionSettings{
			Provider: domain.AIProviderOpenAI, APIKey: "sk-test", Model: "whisper-1",
		})
		require.NoError(t, err)
		assert.IsType(t, &openaitranscribe.Transcriber{}, tr)
		assert.NoError(t, tr.Close())
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := CreateTranscriber(&domain.TranscriptionSettings{Provider: domain.AIProviderOpenAI})
		assert.Error(t, err)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := CreateTranscriber(&domain.TranscriptionSettings{Provider: domain.AIProviderOllama})
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantType any
		wantNil  bool
	}{
		{name: "nil settings", wantNil: true},
		{name: "no provider", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name:     "anthropic",
			settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant", Model: "claude-haiku-4-5"},
			wantType: &anthropicllm.LLMService{},
		},
		{
			name:     "openai",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"},
			wantType: &openaillm.LLMService{},
		},
		{
			name:     "ollama",
			settings: &domain.LLMSettings{Provider: domain.AIProviderOllama},
			wantType: &ollamallm.LLMService{},
		},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}},
		{name: "local cannot chat", settings: &domain.LLMSettings{Provider: domain.AIProviderLocal}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			switch {
			case tt.wantNil:
				assert.NoError(t, err)
				assert.Nil(t, svc)
			case tt.wantType == nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.IsType(t, tt.wantType, svc)
				assert.NoError(t, svc.Close())
			}
		})
	}
}

func TestWrapWithCache(t *testing.T) {
	newInner := func() *hashing.EmbeddingService {
		return hashing.NewEmbeddingService(hashing.Config{Dimensions: 32})
	}

	t.Run("disabled", func(t *testing.T) {
		inner := newInner()
		svc, warnings := WrapWithCache(inner, domain.CacheSettings{Enabled: false}, t.TempDir())
		assert.Same(t, inner, svc)
		assert.Empty(t, warnings)
	})

	t.Run("memory only", func(t *testing.T) {
		svc, warnings := WrapWithCache(newInner(), domain.CacheSettings{Enabled: true, Size: 16}, t.TempDir())
		assert.IsType(t, &cache.EmbeddingService{}, svc)
		assert.Empty(t, warnings)
		assert.NoError(t, svc.Close())
	})

	t.Run("persistent", func(t *testing.T) {
		dir := t.TempDir()
		svc, warnings := WrapWithCache(newInner(),
			domain.CacheSettings{Enabled: true, Size: 16, Persistent: true}, dir)
		assert.IsType(t, &cache.EmbeddingService{}, svc)
		assert.Empty(t, warnings)
		assert.DirExists(t, filepath.Join(dir, cacheDir))
		assert.NoError(t, svc.Close())
	})
}

func TestInit(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.DataDir = t.TempDir()
	settings.Transcription = domain.TranscriptionSettings{Provider: domain.AIProviderOpenAI}

	result, err := Init(&settings)
	require.NoError(t, err)

	assert.NotNil(t, result.EmbeddingService)
	assert.Nil(t, result.Transcriber)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "transcription disabled")
	assert.Nil(t, result.LLMService)
	assert.NoError(t, result.Close())
}

func TestInit_WithLLM(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.DataDir = t.TempDir()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

	result, err := Init(&settings)
	require.NoError(t, err)

	assert.IsType(t, &ollamallm.LLMService{}, result.LLMService)
	assert.NoError(t, result.Close())
}

func TestInit_BadLLMIsAWarning(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.DataDir = t.TempDir()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic}

	result, err := Init(&settings)
	require.NoError(t, err)

	assert.Nil(t, result.LLMService)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "coaching answers disabled")
	assert.NoError(t, result.Close())
}

func TestInit_BadEmbedding(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.APIKey = ""

	_, err := Init(&settings)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, err.Error(), "storybank settings show")
}

func TestInitResult_Close_Empty(t *testing.T) {
	assert.NoError(t, (&InitResult{}).Close())
}
