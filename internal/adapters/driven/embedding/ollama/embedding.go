// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults applied by NewEmbeddingService.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "all-minilm"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 384
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 4 << 10

// Config configures the Ollama client. Zero fields take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// HTTPClient replaces the internal client; Timeout is then unused.
	HTTPClient *http.Client
}

// EmbeddingService calls POST /api/embed, sending a whole batch per request.
type EmbeddingService struct {
	http       *http.Client
	endpoint   string
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService returns a client for cfg.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	s := &EmbeddingService{
		http:       cfg.HTTPClient,
		endpoint:   strings.TrimRight(orDefault(cfg.BaseURL, DefaultBaseURL), "/"),
		model:      orDefault(cfg.Model, DefaultModel),
		dimensions: cfg.Dimensions,
	}
	if s.dimensions <= 0 {
		s.dimensions = DefaultDimensions
	}
	if s.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		s.http = &http.Client{Timeout: timeout}
	}
	return s
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request. Vectors come back in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var res embedResponse
	if err := s.call(ctx, http.MethodPost, "/api/embed", embedRequest{Model: s.model, Input: texts}, &res); err != nil {
		return nil, err
	}
	if got := len(res.Embeddings); got != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", got, len(texts))
	}

	vecs := make([][]float32, len(res.Embeddings))
	for i, raw := range res.Embeddings {
		vec := make([]float32, len(raw))
		for j := range raw {
			vec[j] = float32(raw[j])
		}
		vecs[i] = vec
	}
	return vecs, nil
}

// Dimensions is the configured vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName is the Ollama model used.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists local models, which needs the server up but runs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.call(ctx, http.MethodGet, "/api/tags", nil, nil)
}

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }

// call sends in as JSON (if non-nil) and decodes the reply into out (if non-nil).
func (s *EmbeddingService) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ollama: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("ollama: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ollama: decode response: %w", err)
	}
	return nil
}
