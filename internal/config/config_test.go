package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvAndDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "dbhost")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "tasks")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADDR", "")
	// point at a file that does not exist so no overrides apply
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %s", cfg.Addr)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("expected port 5433, got %d", cfg.DBPort)
	}
	want := "host=dbhost port=5433 user=app password=pw dbname=tasks sslmode=disable"
	if got := cfg.ConnString(); got != want {
		t.Errorf("conn string mismatch:\n got %s\nwant %s", got, want)
	}
	if cfg.CheckInterval() != 10*time.Second {
		t.Errorf("unexpected check interval %s", cfg.CheckInterval())
	}
	if cfg.RearmAfter() != time.Hour || cfg.UpcomingWindow() != time.Hour {
		t.Errorf("unexpected tuning defaults: %s / %s", cfg.RearmAfter(), cfg.UpcomingWindow())
	}
}

func TestLoad_BadPortFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	if cfg := Load(); cfg.DBPort != 5432 {
		t.Errorf("expected fallback port 5432, got %d", cfg.DBPort)
	}
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DB_PORT", "5432")

	path := filepath.Join(t.TempDir(), "config.toml")
	body := "addr = \":7777\"\nreminder_check_seconds = 5\nrearm_after_minutes = 30\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()
	if cfg.Addr != ":7777" {
		t.Errorf("expected file override for addr, got %s", cfg.Addr)
	}
	if cfg.CheckInterval() != 5*time.Second {
		t.Errorf("expected 5s check interval, got %s", cfg.CheckInterval())
	}
	if cfg.RearmAfter() != 30*time.Minute {
		t.Errorf("expected 30m rearm, got %s", cfg.RearmAfter())
	}
	// untouched keys keep their defaults
	if cfg.ViewRefreshInterval() != time.Minute {
		t.Errorf("expected 60s view refresh, got %s", cfg.ViewRefreshInterval())
	}
}
