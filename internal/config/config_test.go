package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Port)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("default session TTL = %v, want 24h", cfg.SessionTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port = %q, want 9999", cfg.Port)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("log level = %v, want debug", cfg.SlogLevel())
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("session TTL = %v, want 1h", cfg.SessionTTL)
	}
}

func TestSlogLevelFallback(t *testing.T) {
	cfg := &Config{LogLevel: "noise"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should fall back to info, got %v", cfg.SlogLevel())
	}
}
