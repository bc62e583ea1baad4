// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists the small amount of state the CLI remembers
// between runs, such as the last output directory.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// FileName is the settings file name inside the config directory.
const FileName = "settings.yaml"

// Settings is the persisted CLI state.
type Settings struct {
	// LastOutputDir is the output directory of the last successful run.
	LastOutputDir string `yaml:"last_output_dir,omitempty"`
}

// DefaultPath returns ~/.config/knowloader/settings.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "knowloader", FileName), nil
}

// Load reads settings from path. A missing file yields zero Settings.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, creating the parent directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
