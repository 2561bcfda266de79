// Package config provides unit tests for configuration loading.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad_defaults verifies built-in defaults when no file exists.
func TestLoad_defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() with missing file should use defaults, got: %v", err)
	}

	if cfg.ListenAddr != "localhost:8090" {
		t.Errorf("Unexpected default listen addr: %s", cfg.ListenAddr)
	}
	if cfg.Remote.Enabled {
		t.Error("Remote sync should be disabled by default")
	}
	if cfg.Remote.RetryAttempts != 3 {
		t.Errorf("Expected 3 retry attempts, got %d", cfg.Remote.RetryAttempts)
	}
	if cfg.Remote.FetchTimeout != 5*time.Second {
		t.Errorf("Expected 5s fetch timeout, got %v", cfg.Remote.FetchTimeout)
	}
}

// TestLoad_file verifies YAML values override defaults.
func TestLoad_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: "localhost:9999"
couple:
  person1: "Hung"
  person2: "Hang"
  start_date: "2026-01-01"
remote:
  enabled: true
  endpoint: "https://sync.example.com"
  auto_save_interval: 30s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ListenAddr != "localhost:9999" {
		t.Errorf("Expected file listen addr, got %s", cfg.ListenAddr)
	}
	if cfg.Couple.Person1 != "Hung" || cfg.Couple.Person2 != "Hang" {
		t.Errorf("Expected couple names from file, got %+v", cfg.Couple)
	}
	if !cfg.Remote.Enabled || cfg.Remote.Endpoint != "https://sync.example.com" {
		t.Errorf("Expected remote config from file, got %+v", cfg.Remote)
	}
	if cfg.Remote.AutoSaveInterval != 30*time.Second {
		t.Errorf("Expected 30s auto save interval, got %v", cfg.Remote.AutoSaveInterval)
	}
	// Untouched values keep defaults.
	if cfg.Remote.RetryBackoff != 2*time.Second {
		t.Errorf("Expected default retry backoff, got %v", cfg.Remote.RetryBackoff)
	}
}

// TestLoad_envOverrides verifies environment beats file values.
func TestLoad_envOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: ./from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("ANNIVERSARY_DATA_DIR", "/from-env")
	t.Setenv("ANNIVERSARY_PERSON1", "Env Person")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DataDir != "/from-env" {
		t.Errorf("Expected env data dir, got %s", cfg.DataDir)
	}
	if cfg.Couple.Person1 != "Env Person" {
		t.Errorf("Expected env person1, got %s", cfg.Couple.Person1)
	}
}

// TestLoad_malformedFile verifies parse errors are reported.
func TestLoad_malformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [broken"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with malformed YAML should return error")
	}
}

// TestLoad_remoteRequiresEndpoint verifies validation.
func TestLoad_remoteRequiresEndpoint(t *testing.T) {
	t.Setenv("ANNIVERSARY_REMOTE_ENABLED", "true")

	if _, err := Load(""); err == nil {
		t.Error("Enabled remote without endpoint should fail validation")
	}
}
