package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Workers != 0 || cfg.Store.Backend != "" {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
workers = 4
tool_timeout_seconds = 60
output_dir = "/tmp/snaps"

[store]
backend = "redis"
redis_url = "redis://localhost:6379/0"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.ToolTimeoutSeconds != 60 {
		t.Errorf("ToolTimeoutSeconds = %d, want 60", cfg.ToolTimeoutSeconds)
	}
	if cfg.OutputDir != "/tmp/snaps" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("workers = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(path); err == nil {
		t.Error("malformed config should error")
	}
}
