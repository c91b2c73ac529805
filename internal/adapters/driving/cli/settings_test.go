package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/core/domain"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short key", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long key", input: "sk-1234567890abcdef", expected: "sk-1...cdef"},
		{name: "Empty key", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskAPIKey(tt.input))
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{"empty uses default", "", 3, 1, 1},
		{"valid choice", "2", 3, 1, 2},
		{"too large", "4", 3, 1, 1},
		{"zero", "0", 3, 1, 1},
		{"not a number", "abc", 3, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseChoice(tt.input, tt.maxVal, tt.defaultVal))
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.DataDir = "/home/test/.storybank"
	ts.settings.settings.Source.NotesFile = "/notes.yaml"

	out, err := execute("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Local (feature hashing, offline)")
	assert.Contains(t, out, "Snapshot: /home/test/.storybank/chunks.json")
	assert.Contains(t, out, "Notes file: /notes.yaml")
	assert.Contains(t, out, "Default k: 5")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_NotionMasksToken(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Source.Type = domain.SourceTypeNotion
	ts.settings.settings.Source.Notion.Token = "secret_0123456789"
	ts.settings.settings.Source.Notion.DatabaseID = "db-1"
	ts.settings.validateErr = errors.New("bad config")

	out, err := execute("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Token: secr...6789")
	assert.NotContains(t, out, "secret_0123456789")
	assert.Contains(t, out, "Database: db-1")
	assert.Contains(t, out, "Warning: bad config")
}

func TestSettingsGetSetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "set", "retrieval.default_k", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Set retrieval.default_k")
	assert.Equal(t, "3", ts.settings.values["retrieval.default_k"])

	out, err = execute("settings", "get", "retrieval.default_k")
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestSettingsGetCmd_Unknown(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("settings", "get", "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSettingsSetCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.setErr = domain.ErrInvalidInput

	_, err := execute("settings", "set", "retrieval.default_k", "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsKeysCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "keys")

	require.NoError(t, err)
	assert.Contains(t, out, "embedding.provider")
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute("settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.provider)
	assert.Equal(t, "all-minilm", ts.settings.model)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsEmbeddingCmd_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = domain.ErrEmbeddingUnavailable
	rootCmd.SetIn(strings.NewReader("1\n\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute("settings", "embedding")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSettingsShowCmd_Coach(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "[Coach]")
	assert.Contains(t, out, "Model: (none, notes are quoted)")
	assert.Contains(t, out, "Max tokens: 200, timeout 10s")

	ts.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-haiku-4-5",
		APIKey:   "sk-ant-0123456789",
	}
	ts.settings.settings.Coach.Persona = "Ten years in payments."

	out, err = execute("settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider: Anthropic (cloud)")
	assert.Contains(t, out, "Model: claude-haiku-4-5")
	assert.Contains(t, out, "API Key: sk-a...6789")
	assert.NotContains(t, out, "sk-ant-0123456789")
	assert.Contains(t, out, "Persona: set")
}

func TestSettingsLLMCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("3\n\nsk-ant-123\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute("settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, ts.settings.llmProvider)
	assert.Equal(t, "claude-haiku-4-5", ts.settings.llmModel)
	assert.Equal(t, "sk-ant-123", ts.settings.llmKey)
	assert.Contains(t, out, "blank to use ANTHROPIC_API_KEY")
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsLLMCmd_LocalModelNeedsNoKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("1\nqwen2.5\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute("settings", "llm")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.llmProvider)
	assert.Equal(t, "qwen2.5", ts.settings.llmModel)
	assert.Empty(t, ts.settings.llmKey)
	assert.NotContains(t, out, "API key")
}

func TestSettingsLLMCmd_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.llmErr = domain.ErrLLMUnavailable
	rootCmd.SetIn(strings.NewReader("1\n\n"))
	defer rootCmd.SetIn(nil)

	out, err := execute("settings", "llm")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, out, "FAILED")
}
