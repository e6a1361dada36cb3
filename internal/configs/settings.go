package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName = "notevault"

	// EnvVaultDir overrides vault_dir.
	EnvVaultDir = "NOTEVAULT_DIR"

	configFileName = "config.toml"
)

// Settings holds the per-user locations NoteVault reads from.
type Settings struct {
	ConfigPath     string
	DefaultDataDir string
}

// DefaultSettings resolves the config file and data directory from the XDG
// base directories.
func DefaultSettings() (*Settings, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("error getting home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return &Settings{
		ConfigPath:     filepath.Join(configDir, appName, configFileName),
		DefaultDataDir: filepath.Join(dataDir, appName),
	}, nil
}
