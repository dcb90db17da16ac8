package driven

import "github.com/docuflow-labs/docuflow/internal/core/domain"

// ConfigStore provides access to application configuration.
// Implementations handle persistence and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, "" when missing.
	GetString(key string) string

	// GetInt retrieves an integer value, 0 when missing.
	GetInt(key string) int

	// GetFloat retrieves a float value, 0 when missing.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, false when missing.
	GetBool(key string) bool

	// Set stores a configuration value. The value is persisted
	// immediately.
	Set(key string, value any) error

	// Settings materialises the typed settings aggregate, applying
	// defaults for missing keys.
	Settings() domain.Settings

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
