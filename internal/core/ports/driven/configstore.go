package driven

// ConfigStore gives the service layer access to persisted settings such
// as the KB file path, retrieval top-k, citation budget and mode.
// Implementations own persistence and type coercion; callers treat
// missing or mistyped keys as zero values.
type ConfigStore interface {
	// Get returns the raw value for key and whether it exists.
	Get(key string) (any, bool)

	// GetString returns the value for key, or "" when the key is
	// missing or not a string.
	GetString(key string) string

	// GetInt returns the value for key, or 0 when the key is missing
	// or not numeric.
	GetInt(key string) int

	// GetBool returns the value for key, or false when the key is
	// missing or not a boolean.
	GetBool(key string) bool

	// Set stores and immediately persists a value.
	Set(key string, value any) error

	// Save writes the current configuration to storage.
	Save() error

	// Load reads the configuration from storage.
	Load() error

	// Path reports where the configuration lives.
	Path() string
}
