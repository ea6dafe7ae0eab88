package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected default listen addr %q", cfg.ListenAddr)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Fatalf("unexpected default backend %q", cfg.Store.Backend)
	}
	if !cfg.Race.ScoreCapEnabled {
		t.Fatalf("score cap should default on")
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
listenAddr: ":9000"
store:
  backend: badger
  badgerDir: /var/lib/ringrace
cache:
  enabled: true
  addr: localhost:6379
  ttl: 30s
race:
  scoreCapEnabled: false
  sessionExpiry: true
  expiryGrace: 15s
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.Store.Backend != StoreBadger || cfg.Store.BadgerDir != "/var/lib/ringrace" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL.Std() != 30*time.Second {
		t.Fatalf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Race.ScoreCapEnabled {
		t.Fatalf("score cap should be disabled")
	}
	if !cfg.Race.SessionExpiry || cfg.Race.ExpiryGrace.Std() != 15*time.Second {
		t.Fatalf("unexpected race config %+v", cfg.Race)
	}
	// Untouched sections keep their defaults.
	if cfg.Catalog.Races != "config/races.yaml" {
		t.Fatalf("unexpected catalog path %q", cfg.Catalog.Races)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RINGRACE_LISTEN_ADDR", ":7777")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Fatalf("env override ignored, got %q", cfg.ListenAddr)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown backend", "store:\n  backend: cassandra\n"},
		{"badger without dir", "store:\n  backend: badger\n"},
		{"postgres without dsn", "store:\n  backend: postgres\n"},
		{"cache without addr", "cache:\n  enabled: true\n"},
		{"nats without url", "nats:\n  enabled: true\n"},
	}
	for _, tc := range cases {
		if _, err := LoadConfig(writeConfig(t, tc.body)); err == nil {
			t.Fatalf("%s: expected a validation error", tc.name)
		}
	}
}
