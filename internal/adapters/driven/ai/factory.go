// Package ai provides factory functions for creating embedding,
// transcription and LLM adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/storybank/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/storybank/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/storybank/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/storybank/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/storybank/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/storybank/internal/adapters/driven/storage/sqlite"
	openaitranscribe "github.com/custodia-labs/storybank/internal/adapters/driven/transcription/openai"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// cacheDir is the subdirectory of the data directory holding the cache database.
const cacheDir = "data"

// InitResult contains the AI services created at start-up.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	Transcriber      driven.Transcriber
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues, e.g. a cache tier that could not open.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var errs []error
	if r.EmbeddingService != nil {
		errs = append(errs, r.EmbeddingService.Close())
	}
	if r.Transcriber != nil {
		errs = append(errs, r.Transcriber.Close())
	}
	if r.LLMService != nil {
		errs = append(errs, r.LLMService.Close())
	}
	return errors.Join(errs...)
}

// Init creates the embedding service (wrapped in the configured cache), the
// transcriber and the coaching LLM. A missing transcriber or LLM is not an
// error: AnswerAudio reports the former when used, and coaching quotes the
// beat text without the latter.
func Init(settings *domain.AppSettings) (*InitResult, error) {
	embedder, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'storybank settings show' to check",
			domain.ErrEmbeddingUnavailable, err)
	}

	result := &InitResult{}
	result.EmbeddingService, result.Warnings = WrapWithCache(embedder, settings.Cache, settings.DataDir)

	transcriber, err := CreateTranscriber(&settings.Transcription)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("transcription disabled: %v", err))
	} else if transcriber != nil {
		result.Transcriber = transcriber
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("coaching answers disabled: %v", err))
	} else if llm != nil {
		result.LLMService = llm
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateAndValidateEmbeddingService(settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateTranscriptionConfig checks that a transcriber can be built.
// Whisper has no cheap ping, so no request is sent.
func ValidateTranscriptionConfig(settings *domain.TranscriptionSettings) error {
	t, err := CreateTranscriber(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTranscriptionUnavailable, err)
	}
	if t != nil {
		return t.Close()
	}
	return nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("no embedding settings")
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("embedding provider %q is not configured", settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return hashing.NewEmbeddingService(hashing.Config{
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s: %w", settings.Provider, domain.ErrUnsupportedType)
	}
}

// WrapWithCache decorates svc with the configured cache tiers. A persistent
// tier that fails to open is reported as a warning and skipped.
func WrapWithCache(svc driven.EmbeddingService, cfg domain.CacheSettings, dataDir string) (driven.EmbeddingService, []string) {
	if !cfg.Enabled {
		return svc, nil
	}

	var (
		warnings []string
		persist  driven.EmbeddingCache
	)
	if cfg.Persistent {
		dir := ""
		if dataDir != "" {
			dir = filepath.Join(dataDir, cacheDir)
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("persistent embedding cache disabled: %v", err))
		} else {
			persist = store
		}
	}

	cached, err := cache.New(svc, cfg.Size, persist)
	if err != nil {
		if persist != nil {
			persist.Close()
		}
		return svc, append(warnings, fmt.Sprintf("embedding cache disabled: %v", err))
	}
	return cached, warnings
}

// CreateTranscriber creates the transcriber selected by settings.
// Returns nil, nil when transcription is not configured.
func CreateTranscriber(settings *domain.TranscriptionSettings) (driven.Transcriber, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, fmt.Errorf("openai transcription needs an API key")
		}
		return openaitranscribe.NewTranscriber(openaitranscribe.Config{
			APIKey:   settings.APIKey,
			BaseURL:  settings.BaseURL,
			Model:    settings.Model,
			Language: settings.Language,
		})

	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s: %w", settings.Provider, domain.ErrUnsupportedType)
	}
}

// CreateLLMService creates the coaching LLM selected by settings.
// Returns nil, nil when no provider is set.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s: %w", settings.Provider, domain.ErrUnsupportedType)
	}
}
