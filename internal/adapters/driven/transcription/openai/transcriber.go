// Package openai provides a speech-to-text adapter using OpenAI Whisper.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

// Ensure Transcriber implements the interface.
var _ driven.Transcriber = (*Transcriber)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1/"
	DefaultModel   = openai.AudioModelWhisper1
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Whisper transcriber.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1/).
	BaseURL string

	// Model is the transcription model (default: whisper-1).
	Model string

	// Language is an optional ISO-639-1 hint such as "en".
	Language string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Transcriber converts audio to text with the OpenAI audio API.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
}

// NewTranscriber creates a new Whisper transcriber.
func NewTranscriber(cfg Config) (*Transcriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Transcriber{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

// namedReader gives the multipart encoder a file name, from which the API
// infers the audio format.
type namedReader struct {
	io.Reader
	name string
}

func (r namedReader) Filename() string { return r.name }

// Transcribe uploads audio and returns the recognised text, trimmed.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, name string) (string, error) {
	if name == "" {
		name = "audio.wav"
	}
	params := openai.AudioTranscriptionNewParams{
		File:  namedReader{Reader: audio, name: filepath.Base(name)},
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// ModelName returns the transcription model in use.
func (t *Transcriber) ModelName() string {
	return t.model
}

// Close releases resources.
func (t *Transcriber) Close() error {
	return nil
}
