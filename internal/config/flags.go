package config

import (
	"flag"
	"time"
)

// FlagError reports a command line that could not be parsed. It unwraps to
// flag.ErrHelp when -h was given.
type FlagError struct {
	Err error
}

func (e *FlagError) Error() string {
	return "parsing flags: " + e.Err.Error()
}

func (e *FlagError) Unwrap() error {
	return e.Err
}

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil, "")
}

// parseFlagsWithSources parses CLI flags and updates source tracking.
func parseFlagsWithSources(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	return parseFlagsHelper(cfg, fs, args, sources, SourceFlag)
}

// parseFlagsHelper is the shared implementation for flag parsing.
// Flags bind directly to cfg with the current values as defaults, so only
// flags that were set change anything. If sources is non-nil, it tracks
// the source of each set flag.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource, source ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Paths and storage
	fs.StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "Directory holding the user todo.toml")
	fs.StringVar(&cfg.StorageBackend, "backend", cfg.StorageBackend, "Storage backend (file, sqlite, mysql, memory)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory for file and sqlite backends")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&cfg.MySQLDSN, "dsn", cfg.MySQLDSN, "MySQL DSN for the mysql backend")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema for the stored list (default: embedded)")

	// Task behavior
	fs.StringVar(&cfg.IDScheme, "id-scheme", cfg.IDScheme, "Task id scheme (timestamp, uuid7)")
	fs.BoolVar(&cfg.AllowEmptyEdit, "allow-empty-edit", cfg.AllowEmptyEdit, "Allow edit to store blank text")
	writeTimeout := fs.Duration("write-timeout", cfg.WriteTimeout(), "Timeout for each storage write")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Append logs to this file instead of stderr")

	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "Suppress confirmations on stdout")
	fs.BoolVar(&cfg.Quiet, "q", cfg.Quiet, "Shorthand for --quiet")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Map flag names to source field names
	flagToSource := map[string]string{
		"backend":          "storage_backend",
		"data-dir":         "data_dir",
		"key":              "storage_key",
		"dsn":              "mysql_dsn",
		"schema":           "schema_file",
		"id-scheme":        "id_scheme",
		"allow-empty-edit": "allow_empty_edit",
		"write-timeout":    "write_timeout_ms",
		"log-level":        "log_level",
		"log-format":       "log_format",
		"log-timestamps":   "log_timestamps",
		"log-caller":       "log_caller",
		"log-file":         "log_file",
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "write-timeout" {
			cfg.WriteTimeoutMS = int(*writeTimeout / time.Millisecond)
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = source
		}
	})

	return nil
}
