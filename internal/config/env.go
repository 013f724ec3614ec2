package config

import (
	"os"
	"strconv"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil, "")
}

// loadFromEnvWithSources loads environment variables and updates source tracking.
func loadFromEnvWithSources(cfg *Config, sources map[string]ConfigSource) {
	loadFromEnvHelper(cfg, sources, SourceEnv)
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource, source ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = source
		}
	}
	str := func(env, field string, target *string) {
		if v := os.Getenv(env); v != "" {
			*target = v
			mark(field)
		}
	}
	boolean := func(env, field string, target *bool) {
		if v := os.Getenv(env); v != "" {
			*target = boolFromString(v)
			mark(field)
		}
	}
	integer := func(env, field string, target *int) {
		if v := os.Getenv(env); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				*target = i
				mark(field)
			}
		}
	}

	str("TODO_BACKEND", "storage_backend", &cfg.StorageBackend)
	str("TODO_DATA_DIR", "data_dir", &cfg.DataDir)
	str("TODO_STORAGE_KEY", "storage_key", &cfg.StorageKey)
	str("TODO_MYSQL_DSN", "mysql_dsn", &cfg.MySQLDSN)
	str("TODO_SCHEMA", "schema_file", &cfg.SchemaFile)
	str("TODO_ID_SCHEME", "id_scheme", &cfg.IDScheme)
	boolean("TODO_ALLOW_EMPTY_EDIT", "allow_empty_edit", &cfg.AllowEmptyEdit)
	integer("TODO_WRITE_TIMEOUT_MS", "write_timeout_ms", &cfg.WriteTimeoutMS)

	// Logging configuration
	str("TODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("TODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("TODO_LOG_CALLER", "log_caller", &cfg.LogCaller)
	str("TODO_LOG_FILE", "log_file", &cfg.LogFile)

	integer("TODO_UI_PULSE_MS", "ui.pulse_ms", &cfg.UI.PulseMS)
	boolean("TODO_UI_ANIMATE", "ui.animate", &cfg.UI.Animate)
}
