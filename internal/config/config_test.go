package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("EXPENSESHARE_JWT_SECRET", "env-secret")
	t.Setenv("EXPENSESHARE_ADDR", ":9090")
	t.Setenv("EXPENSESHARE_LOG_LEVEL", "debug")

	cfg, errLoad := Load("")
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected addr override, got %q", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "expenseshare.db" {
		t.Fatalf("expected default dsn, got %q", cfg.Database.DSN)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("expected jwt secret from env, got %q", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry() != 24*time.Hour {
		t.Fatalf("expected default 24h expiry, got %v", cfg.JWT.Expiry())
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected log level override, got %q", cfg.Log.Level)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("EXPENSESHARE_JWT_SECRET", "")

	if _, errLoad := Load(""); errLoad == nil {
		t.Fatalf("expected error without jwt secret")
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	t.Setenv("EXPENSESHARE_JWT_SECRET", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  addr: \":7070\"\njwt:\n  secret: file-secret\n  expiry-hours: 2\nredis:\n  addr: localhost:6379\n")
	if errWrite := os.WriteFile(path, content, 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("expected addr from file, got %q", cfg.Server.Addr)
	}
	if cfg.JWT.Secret != "file-secret" {
		t.Fatalf("expected jwt secret from file, got %q", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry() != 2*time.Hour {
		t.Fatalf("expected 2h expiry, got %v", cfg.JWT.Expiry())
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected redis addr from file, got %q", cfg.Redis.Addr)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	t.Setenv("EXPENSESHARE_JWT_SECRET", "s")

	if _, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml")); errLoad != nil {
		t.Fatalf("missing file must fall back to defaults, got %v", errLoad)
	}
}
