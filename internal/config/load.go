package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todo/todo.toml or OS-specific config dir)
// 3. Project config file (todo.toml or .todo.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field.name] = SourceDefault
	}

	// The user file location can itself come from a flag or the environment.
	configDir := scanConfigDir(fs, args)
	if configDir == "" {
		configDir = os.Getenv("TODO_CONFIG_DIR")
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(configDir); userConfigFile != "" {
		if err := cws.loadFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := cws.loadFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnvWithSources(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlagsWithSources(cfg, fs, args, cws.Sources); err != nil {
		return nil, &FlagError{Err: err}
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

type configField struct {
	name string   // source-tracking name, also the flat toml key
	key  []string // toml key path
}

// configFields returns the configurable fields for source tracking.
func configFields() []configField {
	flat := []string{
		"storage_backend",
		"data_dir",
		"storage_key",
		"mysql_dsn",
		"schema_file",
		"id_scheme",
		"allow_empty_edit",
		"write_timeout_ms",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
	fields := make([]configField, 0, len(flat)+2)
	for _, name := range flat {
		fields = append(fields, configField{name: name, key: []string{name}})
	}
	return append(fields,
		configField{name: "ui.pulse_ms", key: []string{"ui", "pulse_ms"}},
		configField{name: "ui.animate", key: []string{"ui", "animate"}},
	)
}

// FieldNames returns the source-tracked field names in display order.
func FieldNames() []string {
	fields := configFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// loadFile decodes a TOML file over the current config. Only keys present
// in the file change; their source is recorded. Unknown keys are reported
// as warnings.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	cws.Files = append(cws.Files, path)

	for _, field := range configFields() {
		if md.IsDefined(field.key...) {
			cws.Sources[field.name] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Warnings = append(cws.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	return nil
}

// scanConfigDir finds --config-dir among the global flags so the user
// config file can be located before flags are applied. It parses a scratch
// copy of the flag set; parse errors are left for the real parse to report.
func scanConfigDir(fs *flag.FlagSet, args []string) string {
	scratch := flag.NewFlagSet("scan", flag.ContinueOnError)
	scratch.SetOutput(io.Discard)
	if fs != nil {
		fs.VisitAll(func(f *flag.Flag) {
			if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				scratch.Bool(f.Name, false, "")
				return
			}
			scratch.String(f.Name, "", "")
		})
	}
	if err := parseFlagsHelper(&Config{}, scratch, args, nil, ""); err != nil {
		return ""
	}
	return scratch.Lookup("config-dir").Value.String()
}

// finalizeConfig normalizes values and expands paths.
func finalizeConfig(cfg *Config) error {
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	cfg.IDScheme = strings.ToLower(strings.TrimSpace(cfg.IDScheme))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	cfg.SchemaFile = ExpandPath(cfg.SchemaFile)
	cfg.LogFile = ExpandPath(cfg.LogFile)
	cfg.ConfigDir = ExpandPath(cfg.ConfigDir)

	dir, err := ResolvePath(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	cfg.DataDir = dir
	return nil
}
