package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "ws://localhost:8080/ws" {
		t.Fatalf("unexpected default server url %q", cfg.ServerURL)
	}
	if cfg.ReconnectAttempts != 5 {
		t.Fatalf("unexpected default attempts %d", cfg.ReconnectAttempts)
	}
	if cfg.CallTimeout != 15*time.Second {
		t.Fatalf("unexpected default call timeout %v", cfg.CallTimeout)
	}
	if cfg.LogArchivePath != "" {
		t.Fatalf("archive must be off by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GOPOLY_SERVER_URL", "wss://play.example.com/ws")
	t.Setenv("GOPOLY_CALL_TIMEOUT", "3s")
	t.Setenv("GOPOLY_RECONNECT_ATTEMPTS", "9")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "wss://play.example.com/ws" {
		t.Fatalf("override ignored: %q", cfg.ServerURL)
	}
	if cfg.CallTimeout != 3*time.Second {
		t.Fatalf("override ignored: %v", cfg.CallTimeout)
	}
	if cfg.ReconnectAttempts != 9 {
		t.Fatalf("override ignored: %d", cfg.ReconnectAttempts)
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("GOPOLY_CALL_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("want an error for an unparseable duration")
	}
}
