package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "STASH_CONFIG"

	// DefaultMaxAttempts is the failed-attempt threshold before lockout.
	DefaultMaxAttempts = 3

	// DefaultLockoutMinutes is the lockout duration in minutes.
	DefaultLockoutMinutes = 5

	// DefaultMinPasskeyLength is the recommended minimum passkey length.
	// Shorter passkeys are warned about, not rejected.
	DefaultMinPasskeyLength = 8

	configFileMode = 0600
	configDirMode  = 0700
)

// Config is the deployment configuration for stash. It is read once at
// startup and injected into the vault; nothing here is user-editable at
// runtime.
type Config struct {
	// MasterSecretSHA256 is the hex SHA-256 digest of the master secret
	// used to authorize lockout resets. The secret itself is never
	// stored, never derived from any record passkey.
	MasterSecretSHA256 string `toml:"master_secret_sha256"`

	// MaxAttempts is the number of failed decrypt attempts before lockout.
	MaxAttempts int `toml:"max_attempts"`

	// LockoutMinutes is how long a lockout lasts.
	LockoutMinutes int `toml:"lockout_minutes"`

	// MinPasskeyLength is the recommended minimum passkey length.
	MinPasskeyLength int `toml:"min_passkey_length"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxAttempts:      DefaultMaxAttempts,
		LockoutMinutes:   DefaultLockoutMinutes,
		MinPasskeyLength: DefaultMinPasskeyLength,
	}
}

// LockoutDuration returns the lockout window as a duration.
func (c *Config) LockoutDuration() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// SetMasterSecret stores the SHA-256 digest of the given secret.
func (c *Config) SetMasterSecret(secret []byte) {
	digest := sha256.Sum256(secret)
	c.MasterSecretSHA256 = hex.EncodeToString(digest[:])
}

// HasMasterSecret reports whether a master secret has been configured.
func (c *Config) HasMasterSecret() bool {
	return c.MasterSecretSHA256 != ""
}

// DefaultPath returns the default config file location
// (~/.config/stash/config.toml), honoring the STASH_CONFIG override.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(configDir, "stash", "config.toml"), nil
}

// Load reads the config file at path, applying defaults for anything not
// set. A missing file yields the defaults with no error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.LockoutMinutes <= 0 {
		cfg.LockoutMinutes = DefaultLockoutMinutes
	}
	if cfg.MinPasskeyLength <= 0 {
		cfg.MinPasskeyLength = DefaultMinPasskeyLength
	}

	return cfg, nil
}

// Save writes the config to path with owner-only permissions, creating
// the directory if needed.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, configFileMode)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
