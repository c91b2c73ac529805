package postprocessors

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/postprocessors/chunker"
	"github.com/custodia-labs/storybank/internal/postprocessors/markdown"
	"github.com/custodia-labs/storybank/internal/postprocessors/whitespace"
)

// DefaultPipeline lists the processors run during ingestion when none are configured.
var DefaultPipeline = []string{"chunker", "whitespace"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("markdown", buildMarkdown)
	r.Register("whitespace", buildWhitespace)
}

// NewDefaultPipeline builds the standard splitting pipeline.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(chunker.New(), whitespace.New())
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - namespace (string): UUID namespace for chunk IDs. Changing it changes every ID.
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	ns, ok := cfg["namespace"].(string)
	if !ok || ns == "" {
		return chunker.New(), nil
	}
	id, err := uuid.Parse(ns)
	if err != nil {
		return nil, fmt.Errorf("%w: chunker namespace: %w", domain.ErrInvalidInput, err)
	}
	return chunker.New(chunker.WithNamespace(id)), nil
}

// buildMarkdown creates a markdown stripping processor from generic config.
// Supported config keys:
//   - keep_code (bool): Keep code block contents instead of dropping them
func buildMarkdown(cfg map[string]any) (driven.PostProcessor, error) {
	keep, _ := cfg["keep_code"].(bool)
	return markdown.New(markdown.WithKeepCode(keep)), nil
}

// buildWhitespace creates a whitespace processor from generic config.
// Supported config keys:
//   - max_blank_lines (int): Consecutive blank lines kept (default: 1)
func buildWhitespace(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []whitespace.Option
	if cfg != nil {
		if _, ok := cfg["max_blank_lines"]; ok {
			opts = append(opts, whitespace.WithMaxBlankLines(getIntFromConfig(cfg, "max_blank_lines")))
		}
	}
	return whitespace.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
