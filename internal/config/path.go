// Package config resolves bean-scene settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// memoryPath is SQLite's in-memory database name, passed through untouched.
const memoryPath = ":memory:"

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" || path == memoryPath {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
