package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir switches into a fresh directory so no stray govscout.yaml is found.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	t.Setenv("SAMGOV_API_KEY", "")
	t.Setenv("GOVSCOUT_DB", "")
	t.Setenv("GOVSCOUT_CONFIG", "")
	os.Unsetenv("GOVSCOUT_DB")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, DefaultDBPath)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.Sync.MaxAPICalls != 10 {
		t.Errorf("Sync.MaxAPICalls = %d, want 10", cfg.Sync.MaxAPICalls)
	}
	if cfg.Log.Level != "info" || cfg.Log.Encoding != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !errors.Is(cfg.RequireAPIKey(), ErrMissingAPIKey) {
		t.Errorf("RequireAPIKey() = %v, want ErrMissingAPIKey", cfg.RequireAPIKey())
	}
}

func TestLoad_Environment(t *testing.T) {
	chdir(t)
	t.Setenv("GOVSCOUT_CONFIG", "")
	t.Setenv("SAMGOV_API_KEY", "env-key")
	t.Setenv("GOVSCOUT_DB", "/tmp/env.db")
	t.Setenv("GOVSCOUT_SYNC_MAX_API_CALLS", "25")
	t.Setenv("GOVSCOUT_LOG_LEVEL", "debug")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want 'env-key'", cfg.APIKey)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("DBPath = %q, want '/tmp/env.db'", cfg.DBPath)
	}
	if cfg.Sync.MaxAPICalls != 25 {
		t.Errorf("Sync.MaxAPICalls = %d, want 25", cfg.Sync.MaxAPICalls)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want 'debug'", cfg.Log.Level)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey() = %v, want nil", err)
	}
}

// TestLoad_ConfigFile tests file values and that the environment still wins
func TestLoad_ConfigFile(t *testing.T) {
	dir := chdir(t)
	t.Setenv("GOVSCOUT_CONFIG", "")
	t.Setenv("SAMGOV_API_KEY", "")
	t.Setenv("GOVSCOUT_SYNC_SCHEDULE", "@every 2h")

	content := `
db_path: data/opps.db
api:
  timeout: 5s
sync:
  max_api_calls: 40
  schedule: "@daily"
`
	if err := os.WriteFile(filepath.Join(dir, "govscout.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DBPath != "data/opps.db" {
		t.Errorf("DBPath = %q, want 'data/opps.db'", cfg.DBPath)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Sync.MaxAPICalls != 40 {
		t.Errorf("Sync.MaxAPICalls = %d, want 40", cfg.Sync.MaxAPICalls)
	}
	if cfg.Sync.Schedule != "@every 2h" {
		t.Errorf("Sync.Schedule = %q, want env override '@every 2h'", cfg.Sync.Schedule)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	chdir(t)
	if _, err := Load(New(), "does-not-exist.toml"); err == nil {
		t.Error("Load() with missing explicit config succeeded, want error")
	}
}

// TestLoadDotEnv tests that .env fills unset variables only
func TestLoadDotEnv(t *testing.T) {
	dir := chdir(t)
	t.Setenv("GOVSCOUT_TEST_KEEP", "original")
	t.Setenv("GOVSCOUT_TEST_NEW", "")
	os.Unsetenv("GOVSCOUT_TEST_NEW")

	content := "# comment\nGOVSCOUT_TEST_KEEP=overridden\nGOVSCOUT_TEST_NEW=\"from file\"\n"
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() failed: %v", err)
	}
	if got := os.Getenv("GOVSCOUT_TEST_KEEP"); got != "original" {
		t.Errorf("GOVSCOUT_TEST_KEEP = %q, want 'original'", got)
	}
	if got := os.Getenv("GOVSCOUT_TEST_NEW"); got != "from file" {
		t.Errorf("GOVSCOUT_TEST_NEW = %q, want 'from file'", got)
	}
	os.Unsetenv("GOVSCOUT_TEST_NEW")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) = %v, want nil", err)
	}
}
