package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "https://api.jean-technologies.com/v2" {
		t.Fatalf("unexpected api base %q", cfg.APIBase)
	}
	if cfg.DeployBase != "https://jean-technologies.up.railway.app" {
		t.Fatalf("unexpected deploy base %q", cfg.DeployBase)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.HTTPTimeout)
	}
	if cfg.JournalType != "none" {
		t.Fatalf("journal should be disabled by default, got %q", cfg.JournalType)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JEAN_CLIENT_ID", "client-1")
	t.Setenv("JEAN_ACCESS_TOKEN", "token-1")
	t.Setenv("JEAN_API_KEY", "key-1")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("SINKS_FILE", "  ./configs/sinks.yaml ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClientID != "client-1" || cfg.AccessToken != "token-1" || cfg.APIKey != "key-1" {
		t.Fatalf("credentials not loaded: %+v", cfg.Redacted())
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.HTTPTimeout)
	}
	if cfg.SinksFile != "./configs/sinks.yaml" {
		t.Fatalf("sinks file not trimmed: %q", cfg.SinksFile)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := Config{ClientID: "id", AccessToken: "tok", APIKey: "key"}
	r := cfg.Redacted()
	if r.AccessToken != "***" || r.APIKey != "***" {
		t.Fatalf("secrets not masked: %+v", r)
	}
	if r.ClientID != "id" {
		t.Fatalf("client id should be kept")
	}
	if cfg.AccessToken != "tok" {
		t.Fatalf("original config mutated")
	}
}
