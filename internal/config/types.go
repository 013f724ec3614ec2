package config

import "time"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
	// Warnings holds non-fatal problems, such as unknown keys in a file.
	Warnings []string
}

// Default values.
const (
	DefaultBackend        = "file"
	DefaultDataDir        = "~/.todo"
	DefaultStorageKey     = "tasks"
	DefaultIDScheme       = "timestamp"
	DefaultWriteTimeoutMS = 5000
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultPulseMS        = 300
	DefaultAnimate        = true
)

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	StorageBackend string `toml:"storage_backend"`
	DataDir        string `toml:"data_dir"`
	StorageKey     string `toml:"storage_key"`
	MySQLDSN       string `toml:"mysql_dsn"`

	// Stored list validation; empty means the embedded schema
	SchemaFile string `toml:"schema_file"`

	// Task behavior
	IDScheme       string `toml:"id_scheme"`
	AllowEmptyEdit bool   `toml:"allow_empty_edit"`
	WriteTimeoutMS int    `toml:"write_timeout_ms"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	UI UIConfig `toml:"ui"`

	// Set from flags only
	ConfigDir string `toml:"-"`
	Quiet     bool   `toml:"-"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	// PulseMS is the duration of each half of the add-button pulse.
	PulseMS int  `toml:"pulse_ms"`
	Animate bool `toml:"animate"`
}

// WriteTimeout returns the per-write timeout as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// Pulse returns the duration of each half of the add pulse.
func (c *Config) Pulse() time.Duration {
	return time.Duration(c.UI.PulseMS) * time.Millisecond
}
