// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	// ListenAddr is the localhost address the UI-facing server binds.
	ListenAddr string `yaml:"listen_addr"`

	// DataDir holds the SQLite database file.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Couple CoupleConfig `yaml:"couple"`
	Remote RemoteConfig `yaml:"remote"`
}

// CoupleConfig seeds the default document on first run.
type CoupleConfig struct {
	Person1   string `yaml:"person1"`
	Person2   string `yaml:"person2"`
	StartDate string `yaml:"start_date"` // RFC3339 or YYYY-MM-DD
}

// RemoteConfig configures the remote document store.
type RemoteConfig struct {
	// Enabled turns remote synchronization on. When false the store runs
	// local-only and the adapter stays offline without retrying.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the base URL of the document store API.
	Endpoint string `yaml:"endpoint"`

	// FetchTimeout bounds the initial document fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// RetryAttempts is the handshake retry budget.
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryBackoff is the fixed delay between handshake attempts.
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// AutoSaveInterval drives the offline-mode periodic local persist.
	AutoSaveInterval time.Duration `yaml:"auto_save_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: "localhost:8090",
		DataDir:    "./data",
		LogLevel:   "info",
		Couple: CoupleConfig{
			Person1:   "Person 1",
			Person2:   "Person 2",
			StartDate: "",
		},
		Remote: RemoteConfig{
			Enabled:          false,
			Endpoint:         "",
			FetchTimeout:     5 * time.Second,
			RetryAttempts:    3,
			RetryBackoff:     2 * time.Second,
			AutoSaveInterval: 10 * time.Second,
		},
	}
}

// Load reads configuration from path (optional) and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getEnv("ANNIVERSARY_LISTEN_ADDR", c.ListenAddr)
	c.DataDir = getEnv("ANNIVERSARY_DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("ANNIVERSARY_LOG_LEVEL", c.LogLevel)

	c.Couple.Person1 = getEnv("ANNIVERSARY_PERSON1", c.Couple.Person1)
	c.Couple.Person2 = getEnv("ANNIVERSARY_PERSON2", c.Couple.Person2)
	c.Couple.StartDate = getEnv("ANNIVERSARY_START_DATE", c.Couple.StartDate)

	c.Remote.Enabled = getEnvBool("ANNIVERSARY_REMOTE_ENABLED", c.Remote.Enabled)
	c.Remote.Endpoint = getEnv("ANNIVERSARY_REMOTE_ENDPOINT", c.Remote.Endpoint)
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Remote.Enabled && c.Remote.Endpoint == "" {
		return fmt.Errorf("remote.endpoint is required when remote sync is enabled")
	}
	if c.Remote.RetryAttempts < 1 {
		c.Remote.RetryAttempts = 1
	}
	if c.Remote.FetchTimeout <= 0 {
		c.Remote.FetchTimeout = 5 * time.Second
	}
	if c.Remote.AutoSaveInterval <= 0 {
		c.Remote.AutoSaveInterval = 10 * time.Second
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
