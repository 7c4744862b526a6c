package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Questions.URL != DefaultSheetURL || cfg.Questions.Limit != 12 || cfg.Admin.Username != "admin" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
questions:
  source: postgres
  limit: 3
admin:
  password: hunter2
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Questions.Source != SourcePostgres || cfg.Questions.Limit != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "hunter2" {
		t.Fatalf("expected username default kept, got %+v", cfg.Admin)
	}
	if cfg.Leaderboard.RefreshInterval != "2s" {
		t.Fatalf("expected refresh default, got %q", cfg.Leaderboard.RefreshInterval)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("garbage", time.Second); got != time.Second {
		t.Fatalf("expected fallback on bad input, got %v", got)
	}
	if got := TTLDuration("3m", time.Second); got != 3*time.Minute {
		t.Fatalf("expected 3m, got %v", got)
	}
}
