// Package config loads lastwatched settings from a YAML file. A missing file
// yields defaults; environment variables override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all lastwatched configuration.
type Config struct {
	// Socket is the provider host's unix socket. Empty derives one from the
	// config directory.
	Socket string `yaml:"socket"`

	// Icon overrides the overlay icon path. Empty uses icon.ico next to the
	// host executable.
	Icon string `yaml:"icon"`

	Lock    LockConfig    `yaml:"lock"`
	Logging LoggingConfig `yaml:"logging"`
}

// LockConfig bounds how long an operation waits for a ledger lock.
type LockConfig struct {
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // daemon log file; empty logs to stderr
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Lock: LockConfig{
			ReadTimeout:  "500ms",
			WriteTimeout: "2s",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lastwatched", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that durations parse.
func (c *Config) Validate() error {
	if _, err := parseDuration(c.Lock.ReadTimeout); err != nil {
		return fmt.Errorf("lock.read_timeout: %w", err)
	}
	if _, err := parseDuration(c.Lock.WriteTimeout); err != nil {
		return fmt.Errorf("lock.write_timeout: %w", err)
	}
	return nil
}

// ReadTimeout returns the shared-lock wait. Zero means the store default.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := parseDuration(c.Lock.ReadTimeout)
	return d
}

// WriteTimeout returns the exclusive-lock wait. Zero means the store default.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := parseDuration(c.Lock.WriteTimeout)
	return d
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LASTWATCHED_SOCKET"); v != "" {
		c.Socket = v
	}
	if v := os.Getenv("LASTWATCHED_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LASTWATCHED_ICON"); v != "" {
		c.Icon = v
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}
