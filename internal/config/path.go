// Package config loads notecheck settings from Viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the config directory and the environment prefix.
const AppName = "notecheck"

// ExpandPath expands a leading ~ and any $VAR references in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// Dir returns the directory holding the config file and saved tokens.
// XDG_CONFIG_HOME wins over ~/.config when set.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	return ExpandPath(filepath.Join("~", ".config", AppName))
}

// TokenFile is where the Google OAuth token is cached.
func TokenFile() string {
	return filepath.Join(Dir(), "sheets-token.json")
}
