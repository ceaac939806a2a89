package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HomeEnv overrides the configuration home directory.
	HomeEnv = "COGNITIO_HOME"
	// FileName is the configuration file inside the home directory.
	FileName = "cognitio.yaml"
	// DatabaseName is the default search index file inside the home directory.
	DatabaseName = "cognitio.db"
)

// Home returns $COGNITIO_HOME, or $HOME/.config/cognitio when unset.
func Home() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return ExpandPath(home), nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(userHome, ".config", "cognitio"), nil
}

// DefaultPath returns the configuration file path inside Home, or FileName
// relative to the working directory when no home can be resolved.
func DefaultPath() string {
	home, err := Home()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// ExpandPath expands a leading "~" to the user home directory and makes the
// result absolute. It never fails; unresolvable paths are returned cleaned.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if userHome, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(userHome, strings.TrimPrefix(p, "~"))
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
