package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/todo"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error", "fatal"}
	validLogFormats = []string{"text", "json", "logfmt"}
	validIDSchemes  = []string{todo.SchemeTimestamp, todo.SchemeUUID7}
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if !contains(kv.Backends, c.StorageBackend) {
		errs = append(errs, fmt.Errorf("storage_backend %q: must be one of %s", c.StorageBackend, strings.Join(kv.Backends, ", ")))
	}
	if c.StorageBackend == kv.BackendMySQL && c.MySQLDSN == "" {
		errs = append(errs, errors.New("mysql_dsn: required when storage_backend is mysql"))
	}
	if (c.StorageBackend == kv.BackendFile || c.StorageBackend == kv.BackendSQLite) && c.DataDir == "" {
		errs = append(errs, fmt.Errorf("data_dir: required when storage_backend is %s", c.StorageBackend))
	}
	if err := kv.ValidKey(c.StorageKey); err != nil {
		errs = append(errs, fmt.Errorf("storage_key: %w", err))
	}
	if !contains(validIDSchemes, c.IDScheme) {
		errs = append(errs, fmt.Errorf("id_scheme %q: must be one of %s", c.IDScheme, strings.Join(validIDSchemes, ", ")))
	}
	if c.WriteTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("write_timeout_ms %d: must not be negative", c.WriteTimeoutMS))
	}
	if !contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q: must be one of debug, info, warn, error", c.LogLevel))
	}
	if !contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q: must be one of %s", c.LogFormat, strings.Join(validLogFormats, ", ")))
	}
	if c.UI.PulseMS <= 0 {
		errs = append(errs, fmt.Errorf("ui.pulse_ms %d: must be positive", c.UI.PulseMS))
	}

	return errors.Join(errs...)
}

// Value returns the display value of a source-tracked field.
func (c *Config) Value(field string) string {
	switch field {
	case "storage_backend":
		return c.StorageBackend
	case "data_dir":
		return c.DataDir
	case "storage_key":
		return c.StorageKey
	case "mysql_dsn":
		return redactDSN(c.MySQLDSN)
	case "schema_file":
		if c.SchemaFile == "" {
			return "(embedded)"
		}
		return c.SchemaFile
	case "id_scheme":
		return c.IDScheme
	case "allow_empty_edit":
		return fmt.Sprint(c.AllowEmptyEdit)
	case "write_timeout_ms":
		return fmt.Sprint(c.WriteTimeoutMS)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return fmt.Sprint(c.LogTimestamps)
	case "log_caller":
		return fmt.Sprint(c.LogCaller)
	case "log_file":
		return c.LogFile
	case "ui.pulse_ms":
		return fmt.Sprint(c.UI.PulseMS)
	case "ui.animate":
		return fmt.Sprint(c.UI.Animate)
	}
	return ""
}

// redactDSN hides the password in user:pass@tcp(host)/db.
func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return dsn
	}
	return creds[:colon] + ":***" + dsn[at:]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
