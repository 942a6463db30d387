package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AppName != "restbridge" {
		t.Fatalf("unexpected app_name: %q", cfg.AppName)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log_level: %q", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.HTTPTimeout)
	}
	if cfg.APIToken != "" {
		t.Fatalf("expected empty api token by default, got %q", cfg.APIToken)
	}
	if cfg.JournalType != "none" {
		t.Fatalf("unexpected journal_type: %q", cfg.JournalType)
	}
}

func TestLoadReadsAPITokenFromEnv(t *testing.T) {
	t.Setenv("API_TOKEN", "sekrit")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIToken != "sekrit" {
		t.Fatalf("expected APIToken from env, got %q", cfg.APIToken)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log_level: %q", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.HTTPTimeout)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-positive http_timeout_seconds")
	}
}
