package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"todo.toml", ".todo.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// An explicit config directory wins; otherwise ~/.todo/todo.toml is checked
// first, then the OS-specific config directory.
func findUserConfigFile(configDir string) string {
	if configDir != "" {
		p := filepath.Join(ExpandPath(configDir), "todo.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		return ""
	}

	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".todo", "todo.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "todo", "todo.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.StorageBackend = DefaultBackend
	cfg.DataDir = DefaultDataDir
	cfg.StorageKey = DefaultStorageKey
	cfg.IDScheme = DefaultIDScheme
	cfg.WriteTimeoutMS = DefaultWriteTimeoutMS
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.UI.PulseMS = DefaultPulseMS
	cfg.UI.Animate = DefaultAnimate
}

// GetConfigFile returns the config file with the highest priority that was
// read, or empty string when none was.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
