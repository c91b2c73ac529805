package driven

// ConfigStore is the persisted settings tree behind `storybank settings`.
// Keys are dotted paths such as "embedding.provider" or "source.notion.token";
// the store decides how those map onto its file format.
type ConfigStore interface {
	// Get returns the raw value under key and whether it was present.
	Get(key string) (any, bool)

	// Typed getters return the zero value when the key is missing or the
	// stored value has another type. GetFloat also accepts integers.
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set writes key and saves the file.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is where the settings file lives on disk.
	Path() string
}
