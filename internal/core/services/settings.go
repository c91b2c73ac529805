package services

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir      = "data_dir"
	keySnapshotFile = "snapshot_file"
	keyServerAddr   = "server.addr"

	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDimensions = "embedding.dimensions"
	keyEmbedBatchSize  = "embedding.batch_size"

	keyTranscribeProvider = "transcription.provider"
	keyTranscribeModel    = "transcription.model"
	keyTranscribeBaseURL  = "transcription.base_url"
	keyTranscribeAPIKey   = "transcription.api_key"
	keyTranscribeLanguage = "transcription.language"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyCoachMaxTokens = "coach.max_tokens"
	keyCoachTimeout   = "coach.timeout"
	keyCoachCacheSize = "coach.cache_size"
	keyCoachPersona   = "coach.persona"

	keySourceType      = "source.type"
	keySourceNotesFile = "source.notes_file"

	keyNotionToken      = "notion.token"
	keyNotionDatabaseID = "notion.database_id"
	keyNotionPageID     = "notion.page_id"
	keyNotionRelation   = "notion.relation_property"
	keyNotionTitle      = "notion.title_property"
	keyNotionRPS        = "notion.requests_per_second"

	keyRetrievalK       = "retrieval.default_k"
	keyRetrievalTimeout = "retrieval.timeout"

	keyCacheEnabled    = "cache.enabled"
	keyCacheSize       = "cache.size"
	keyCachePersistent = "cache.persistent"

	keyPipelineProcessors = "pipeline.processors"
)

// Environment variables that supply secrets when the config file does not.
const (
	EnvNotionToken     = "NOTION_TOKEN"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// setting is one key/value pair written by Save.
type setting struct {
	key   string
	value any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults; secrets fall back to the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	dataDir := s.configStore.GetString(keyDataDir)
	if dataDir == "" && s.configStore.Path() != "" {
		dataDir = filepath.Dir(s.configStore.Path())
	}

	settings := &domain.AppSettings{
		DataDir:      dataDir,
		SnapshotFile: s.getString(keySnapshotFile, defaults.SnapshotFile),
		ServerAddr:   s.getString(keyServerAddr, defaults.ServerAddr),
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
			BatchSize:  s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
		},
		Transcription: domain.TranscriptionSettings{
			Provider: s.getProvider(keyTranscribeProvider, defaults.Transcription.Provider),
			Model:    s.getString(keyTranscribeModel, defaults.Transcription.Model),
			BaseURL:  s.configStore.GetString(keyTranscribeBaseURL),
			APIKey:   s.configStore.GetString(keyTranscribeAPIKey),
			Language: s.configStore.GetString(keyTranscribeLanguage),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Coach: domain.CoachSettings{
			MaxTokens: s.getInt(keyCoachMaxTokens, defaults.Coach.MaxTokens),
			Timeout:   s.getDuration(keyCoachTimeout, defaults.Coach.Timeout),
			CacheSize: s.getInt(keyCoachCacheSize, defaults.Coach.CacheSize),
			Persona:   s.configStore.GetString(keyCoachPersona),
		},
		Source: domain.SourceSettings{
			Type:      s.getSourceType(defaults.Source.Type),
			NotesFile: s.configStore.GetString(keySourceNotesFile),
			Notion: domain.NotionSettings{
				Token:             s.configStore.GetString(keyNotionToken),
				DatabaseID:        s.configStore.GetString(keyNotionDatabaseID),
				PageID:            s.configStore.GetString(keyNotionPageID),
				RelationProperty:  s.getString(keyNotionRelation, defaults.Source.Notion.RelationProperty),
				TitleProperty:     s.getString(keyNotionTitle, defaults.Source.Notion.TitleProperty),
				RequestsPerSecond: s.getFloat(keyNotionRPS, defaults.Source.Notion.RequestsPerSecond),
			},
		},
		Retrieval: domain.RetrievalSettings{
			DefaultK: s.getInt(keyRetrievalK, defaults.Retrieval.DefaultK),
			Timeout:  s.getDuration(keyRetrievalTimeout, defaults.Retrieval.Timeout),
		},
		Cache: domain.CacheSettings{
			Enabled:    s.getBool(keyCacheEnabled, defaults.Cache.Enabled),
			Size:       s.getInt(keyCacheSize, defaults.Cache.Size),
			Persistent: s.getBool(keyCachePersistent, defaults.Cache.Persistent),
		},
	}

	// Model and dimensions follow the provider unless set explicitly.
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	}
	if settings.Embedding.Dimensions == 0 && settings.Embedding.Provider == domain.AIProviderLocal {
		settings.Embedding.Dimensions = defaults.Embedding.Dimensions
	}

	s.applyEnv(settings)

	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	return settings, nil
}

// applyEnv fills secrets that the config file leaves empty.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if settings.Source.Notion.Token == "" {
		settings.Source.Notion.Token = os.Getenv(EnvNotionToken)
	}

	anthropicKey := os.Getenv(EnvAnthropicAPIKey)
	if settings.LLM.Provider == "" && anthropicKey != "" {
		settings.LLM.Provider = domain.AIProviderAnthropic
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envFor(keyLLMAPIKey, settings.LLM.Provider)
	}

	openAIKey := os.Getenv(EnvOpenAIAPIKey)
	if openAIKey == "" {
		return
	}
	if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = openAIKey
	}
	if settings.Transcription.Provider == "" {
		settings.Transcription.Provider = domain.AIProviderOpenAI
	}
	if settings.Transcription.Provider == domain.AIProviderOpenAI && settings.Transcription.APIKey == "" {
		settings.Transcription.APIKey = openAIKey
	}
}

// Save persists application settings. Empty secrets are not written so
// that environment-supplied keys never end up in the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keySnapshotFile, settings.SnapshotFile},
		{keyServerAddr, settings.ServerAddr},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyTranscribeProvider, settings.Transcription.Provider.String()},
		{keyTranscribeModel, settings.Transcription.Model},
		{keyTranscribeBaseURL, settings.Transcription.BaseURL},
		{keyTranscribeLanguage, settings.Transcription.Language},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyCoachMaxTokens, settings.Coach.MaxTokens},
		{keyCoachTimeout, settings.Coach.Timeout.String()},
		{keyCoachCacheSize, settings.Coach.CacheSize},
		{keyCoachPersona, settings.Coach.Persona},
		{keySourceType, string(settings.Source.Type)},
		{keySourceNotesFile, settings.Source.NotesFile},
		{keyNotionDatabaseID, settings.Source.Notion.DatabaseID},
		{keyNotionPageID, settings.Source.Notion.PageID},
		{keyNotionRelation, settings.Source.Notion.RelationProperty},
		{keyNotionTitle, settings.Source.Notion.TitleProperty},
		{keyNotionRPS, settings.Source.Notion.RequestsPerSecond},
		{keyRetrievalK, settings.Retrieval.DefaultK},
		{keyRetrievalTimeout, settings.Retrieval.Timeout.String()},
		{keyCacheEnabled, settings.Cache.Enabled},
		{keyCacheSize, settings.Cache.Size},
		{keyCachePersistent, settings.Cache.Persistent},
	}
	if settings.DataDir != "" {
		values = append(values, setting{keyDataDir, settings.DataDir})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := []struct {
		key      string
		value    string
		provider domain.AIProvider
	}{
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.Provider},
		{keyTranscribeAPIKey, settings.Transcription.APIKey, settings.Transcription.Provider},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.Provider},
		{keyNotionToken, settings.Source.Notion.Token, ""},
	}
	for _, secret := range secrets {
		key, val := secret.key, secret.value
		if val == "" || val == s.envFor(key, secret.provider) {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	return nil
}

// envFor returns the environment value that backs a secret key. The LLM
// key depends on which provider it is for.
func (s *SettingsService) envFor(key string, provider domain.AIProvider) string {
	switch key {
	case keyNotionToken:
		return os.Getenv(EnvNotionToken)
	case keyEmbedAPIKey, keyTranscribeAPIKey:
		return os.Getenv(EnvOpenAIAPIKey)
	case keyLLMAPIKey:
		switch provider {
		case domain.AIProviderAnthropic:
			return os.Getenv(EnvAnthropicAPIKey)
		case domain.AIProviderOpenAI:
			return os.Getenv(EnvOpenAIAPIKey)
		}
	}
	return ""
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate API key if required
	if apiKey == "" && provider == domain.AIProviderOpenAI {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)", domain.ErrInvalidInput, provider, EnvOpenAIAPIKey)
	}

	settings.Embedding.Provider = provider
	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	default:
		settings.Embedding.BaseURL = ""
	}

	settings.Embedding.APIKey = apiKey

	// Dimensions follow the model; a stale override would break ingestion.
	settings.Embedding.Dimensions = domain.EmbeddingDimensions()[settings.Embedding.Model]
	if provider == domain.AIProviderLocal {
		settings.Embedding.Dimensions = domain.DefaultAppSettings().Embedding.Dimensions
	}

	return s.Save(settings)
}

// SetLLMProvider configures the coaching language model. An empty apiKey
// falls back to the provider's environment variable.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %q cannot generate coaching answers", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" {
		apiKey = s.envFor(keyLLMAPIKey, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings.LLM.Provider = provider
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Retrieval.DefaultK < 1 {
		return fmt.Errorf("%w: retrieval.default_k must be >= 1", domain.ErrInvalidInput)
	}

	switch settings.Source.Type {
	case domain.SourceTypeFile:
		if settings.Source.NotesFile == "" {
			return fmt.Errorf("%w: %s is required for the file source", domain.ErrInvalidInput, keySourceNotesFile)
		}
	case domain.SourceTypeNotion:
		if settings.Source.Notion.Token == "" {
			return fmt.Errorf("%w: notion token missing (set %s)", domain.ErrInvalidInput, EnvNotionToken)
		}
		if settings.Source.Notion.DatabaseID == "" && settings.Source.Notion.PageID == "" {
			return fmt.Errorf("%w: notion needs %s or %s",
				domain.ErrInvalidInput, keyNotionDatabaseID, keyNotionPageID)
		}
	default:
		return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, settings.Source.Type)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateTranscriptionConfig validates the current transcription configuration.
func (s *SettingsService) ValidateTranscriptionConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateTranscription(&settings.Transcription)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		opts := s.loadProcessorConfig("pipeline." + name + ".")
		if len(opts) == 0 {
			continue
		}
		if cfg.ProcessorConfigs == nil {
			cfg.ProcessorConfigs = make(map[string]map[string]any)
		}
		cfg.ProcessorConfigs[name] = opts
	}

	return cfg
}

// loadProcessorConfig loads known processor option keys under prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"max_blank_lines", "namespace"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getSourceType(defaultVal domain.SourceType) domain.SourceType {
	t := domain.SourceType(s.configStore.GetString(keySourceType))
	if !t.IsValid() {
		return defaultVal
	}
	return t
}

// valueKind is the type a config key is stored as.
type valueKind int

const (
	kindString valueKind = iota
	kindSecret
	kindInt
	kindFloat
	kindBool
	kindDuration
	kindList
)

// settingKinds lists every key accepted by SetValue.
var settingKinds = map[string]valueKind{
	keyDataDir:            kindString,
	keySnapshotFile:       kindString,
	keyServerAddr:         kindString,
	keyEmbedProvider:      kindString,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindSecret,
	keyEmbedDimensions:    kindInt,
	keyEmbedBatchSize:     kindInt,
	keyTranscribeProvider: kindString,
	keyTranscribeModel:    kindString,
	keyTranscribeBaseURL:  kindString,
	keyTranscribeAPIKey:   kindSecret,
	keyTranscribeLanguage: kindString,
	keyLLMProvider:        kindString,
	keyLLMModel:           kindString,
	keyLLMBaseURL:         kindString,
	keyLLMAPIKey:          kindSecret,
	keyCoachMaxTokens:     kindInt,
	keyCoachTimeout:       kindDuration,
	keyCoachCacheSize:     kindInt,
	keyCoachPersona:       kindString,
	keySourceType:         kindString,
	keySourceNotesFile:    kindString,
	keyNotionToken:        kindSecret,
	keyNotionDatabaseID:   kindString,
	keyNotionPageID:       kindString,
	keyNotionRelation:     kindString,
	keyNotionTitle:        kindString,
	keyNotionRPS:          kindFloat,
	keyRetrievalK:         kindInt,
	keyRetrievalTimeout:   kindDuration,
	keyCacheEnabled:       kindBool,
	keyCacheSize:          kindInt,
	keyCachePersistent:    kindBool,
	keyPipelineProcessors: kindList,
}

// Keys returns the settable config keys, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// GetValue returns the stored value for key. Secrets are masked.
func (s *SettingsService) GetValue(key string) (string, bool) {
	kind, known := settingKinds[key]
	if !known {
		return "", false
	}
	val, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	out := fmt.Sprint(val)
	if kind == kindList {
		out = strings.Join(s.configStore.GetStringSlice(key), ",")
	}
	if kind == kindSecret {
		out = MaskSecret(out)
	}
	return out, true
}

// SetValue parses raw according to the key's type and stores it.
func (s *SettingsService) SetValue(key, raw string) error {
	kind, known := settingKinds[key]
	if !known {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	raw = strings.TrimSpace(raw)

	var value any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		value = n
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		value = f
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		value = b
	case kindDuration:
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return fmt.Errorf("%w: %s must be a duration such as 2s", domain.ErrInvalidInput, key)
		}
		value = d.String()
	case kindList:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		value = items
	default:
		if err := validateEnum(key, raw); err != nil {
			return err
		}
		value = raw
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// validateEnum rejects unknown providers and source types.
func validateEnum(key, raw string) error {
	switch key {
	case keyEmbedProvider:
		if !slices.Contains(domain.AllEmbeddingProviders(), domain.AIProvider(raw)) {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, raw)
		}
	case keyTranscribeProvider:
		if raw != "" && domain.AIProvider(raw) != domain.AIProviderOpenAI {
			return fmt.Errorf("%w: transcription supports only %q", domain.ErrInvalidInput, domain.AIProviderOpenAI)
		}
	case keyLLMProvider:
		if raw != "" && !slices.Contains(domain.AllLLMProviders(), domain.AIProvider(raw)) {
			return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, raw)
		}
	case keySourceType:
		if !domain.SourceType(raw).IsValid() {
			return fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, raw)
		}
	}
	return nil
}

// MaskSecret shortens a secret for display.
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
