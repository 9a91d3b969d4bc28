package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	appName       = "dkanim"
	animExtension = ".dkanim"
)

// ConfigPath returns the config file path.
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func ConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first (Unix-like systems)
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Check if we're on Windows by looking for APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName, "config.yaml"), nil
	}

	// Fall back to ~/.config/dkanim/config.yaml (Unix-like systems)
	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// BrowseDir picks the directory a file prompt should start in: the directory
// of current when it names a file, current itself when it is a directory,
// otherwise the directory holding the scene file
func BrowseDir(fs afero.Fs, current, sceneFile string) string {
	if current != "" {
		if info, err := fs.Stat(current); err == nil {
			if info.IsDir() {
				return current
			}
			return filepath.Dir(current)
		}
	}
	if sceneFile != "" {
		return filepath.Dir(sceneFile)
	}
	return "."
}

// WithAnimExtension replaces the extension of path with .dkanim
func WithAnimExtension(path string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, animExtension) {
		return path
	}
	return strings.TrimSuffix(path, ext) + animExtension
}

// HasDirComponent reports whether path names a directory explicitly
func HasDirComponent(path string) bool {
	return strings.ContainsAny(path, `/\`)
}
