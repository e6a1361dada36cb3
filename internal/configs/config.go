package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/PolarWolf314/notevault/internal/crypto"
	"github.com/PolarWolf314/notevault/internal/passgen"
)

// Config is the contents of config.toml.
type Config struct {
	VaultDir       string `toml:"vault_dir,omitempty"`
	KDFIterations  int    `toml:"kdf_iterations"`
	SaltLength     int    `toml:"salt_length"`
	PasswordLength int    `toml:"password_length"`
	Audit          bool   `toml:"audit"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		KDFIterations:  crypto.DefaultIterations,
		SaltLength:     crypto.SaltLen,
		PasswordLength: passgen.DefaultLength,
		Audit:          true,
	}
}

// Load reads the configuration at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err := LoadTOML(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// Validate checks that every value is in range.
func (c *Config) Validate() error {
	if c.KDFIterations < crypto.MinIterations || c.KDFIterations > crypto.MaxIterations {
		return fmt.Errorf("kdf_iterations must be between %d and %d, got %d",
			crypto.MinIterations, crypto.MaxIterations, c.KDFIterations)
	}
	if c.SaltLength < crypto.SaltLen || c.SaltLength > 1024 {
		return fmt.Errorf("salt_length must be between %d and 1024, got %d", crypto.SaltLen, c.SaltLength)
	}
	if c.PasswordLength < passgen.MinLength || c.PasswordLength > passgen.MaxLength {
		return fmt.Errorf("password_length must be between %d and %d, got %d",
			passgen.MinLength, passgen.MaxLength, c.PasswordLength)
	}
	return nil
}

// ResolveVaultDir picks the vault directory: flag, then NOTEVAULT_DIR, then
// vault_dir, then the default data directory.
func (c *Config) ResolveVaultDir(flag string, settings *Settings) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvVaultDir); env != "" {
		return env
	}
	if c.VaultDir != "" {
		return c.VaultDir
	}
	return settings.DefaultDataDir
}
