package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

var windowsEnvRef = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_()]*)%`)

// ExpandPath expands a leading ~ and environment references in p.
// $VAR and ${VAR} work everywhere; %VAR% is also expanded on Windows.
// Unset %VAR% references are left as written.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = expandPercentEnv(p)
	}
	return expandHome(p)
}

func expandPercentEnv(p string) string {
	return windowsEnvRef.ReplaceAllStringFunc(p, func(ref string) string {
		if v, ok := os.LookupEnv(strings.Trim(ref, "%")); ok {
			return v
		}
		return ref
	})
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !(runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}

// ResolvePath expands p and makes it absolute relative to the working
// directory.
func ResolvePath(p string) (string, error) {
	p = ExpandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Abs(p)
}
