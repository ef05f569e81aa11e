package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
identity:
  api_key: test-key
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL == "" {
		t.Error("backend base URL default missing")
	}
	if cfg.Backend.Timeout.Std() != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Backend.Timeout)
	}
	if cfg.Activation.Fee != 1000 {
		t.Errorf("activation fee = %v, want 1000", cfg.Activation.Fee)
	}
	if cfg.Activation.PollAttempts != 30 {
		t.Errorf("poll attempts = %d, want 30", cfg.Activation.PollAttempts)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
  timeout: 3s
identity:
  api_key: test-key
activation:
  fee: 500
  poll_interval: 1s
  poll_attempts: 10
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Errorf("base URL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout.Std() != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Backend.Timeout)
	}
	if cfg.Activation.Fee != 500 {
		t.Errorf("fee = %v, want 500", cfg.Activation.Fee)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_KAZI_KEY", "expanded-key")
	path := writeConfig(t, `
identity:
  api_key: ${TEST_KAZI_KEY}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Identity.APIKey != "expanded-key" {
		t.Errorf("api key = %q, want expanded-key", cfg.Identity.APIKey)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KAZI_IDENTITY_API_KEY", "override-key")
	path := writeConfig(t, `
identity:
  api_key: file-key
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Identity.APIKey != "override-key" {
		t.Errorf("api key = %q, want override-key", cfg.Identity.APIKey)
	}
}

func TestLoadRejectsMissingAPIKey(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:8000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing identity.api_key")
	}
}
