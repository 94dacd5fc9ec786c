package driven

// SettingsStore provides access to user-local settings (credentials,
// preferred defaults). Implementations handle persistence (e.g., TOML
// files) and type conversion. Run configuration lives elsewhere: this
// store is for the handful of values that belong to the operator, not
// to a deployment.
type SettingsStore interface {
	// Get retrieves a settings value by dot-notation key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetBool retrieves a boolean value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a value. The value is persisted immediately.
	Set(key string, value any) error

	// Keys returns every stored key in sorted order.
	Keys() []string

	// Load reads settings from storage.
	Load() error

	// Path returns the settings file path.
	Path() string
}
