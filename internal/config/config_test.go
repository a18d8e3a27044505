// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	cfg.Accounts.Seed = []SeedAccount{{ID: "1", Username: "duty-officer", Role: "admin"}}
	return cfg
}

func TestDefaultConfigValidatesWithSecret(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config with secret should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "at least 32"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "prod" }, "ENVIRONMENT"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"zero sweep", func(c *Config) { c.RateLimit.SweepInterval = 0 }, "RATE_LIMIT_SWEEP_INTERVAL"},
		{"burst without rate", func(c *Config) { c.Realtime.InboundBurst = 0 }, "WS_INBOUND_BURST"},
		{"unknown store", func(c *Config) { c.Accounts.Store = "redis" }, "ACCOUNT_STORE"},
		{"badger without path", func(c *Config) { c.Accounts.Store = "badger"; c.Accounts.Path = "" }, "ACCOUNT_STORE_PATH"},
		{"memory store with nothing to populate it", func(c *Config) { c.Accounts.Seed = nil }, "ACCOUNT_SEED or NATS_ENABLED"},
		{"seed without id", func(c *Config) { c.Accounts.Seed = []SeedAccount{{Username: "x", Role: "user"}} }, "has no id"},
		{"seed with unknown role", func(c *Config) { c.Accounts.Seed = []SeedAccount{{ID: "2", Username: "x", Role: "root"}} }, "unknown role"},
		{"duplicate seed", func(c *Config) {
			c.Accounts.Seed = []SeedAccount{{ID: "2", Username: "a", Role: "user"}, {ID: "2", Username: "b", Role: "user"}}
		}, "twice"},
		{"bad nats scheme", func(c *Config) { c.Events.Enabled = true; c.Events.URL = "http://x:4222" }, "NATS_URL"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmbeddedNATSSkipsURLCheck(t *testing.T) {
	cfg := validConfig()
	cfg.Events.Enabled = true
	cfg.Events.Embedded = true
	cfg.Events.URL = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded NATS should not require a URL: %v", err)
	}
}

func TestUnseededStoreNeedsAnUpdateSource(t *testing.T) {
	cfg := validConfig()
	cfg.Accounts.Seed = nil
	cfg.Events.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory store fed by NATS should validate: %v", err)
	}

	cfg = validConfig()
	cfg.Accounts.Seed = nil
	cfg.Accounts.Store = "badger"
	if err := cfg.Validate(); err != nil {
		t.Errorf("badger store may start empty: %v", err)
	}
}

func TestParseSeedAccounts(t *testing.T) {
	seeds, err := parseSeedAccounts(" 1:duty-officer:admin, 2:river ,")
	if err != nil {
		t.Fatalf("parseSeedAccounts() error = %v", err)
	}
	want := []SeedAccount{
		{ID: "1", Username: "duty-officer", Role: "admin"},
		{ID: "2", Username: "river", Role: "user"},
	}
	if len(seeds) != len(want) {
		t.Fatalf("expected %d seeds, got %v", len(want), seeds)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seed %d = %+v, want %+v", i, seeds[i], want[i])
		}
	}

	if _, err := parseSeedAccounts("only-an-id"); err == nil {
		t.Error("expected error for entry without username")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WS_PONG_WAIT", "45s")
	t.Setenv("ACCOUNT_STORE", "memory")
	t.Setenv("ACCOUNT_SEED", "1:duty-officer:admin,2:river")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("expected two trimmed CORS origins, got %v", cfg.Security.CORSOrigins)
	}
	if cfg.Realtime.PongWait != 45*time.Second {
		t.Errorf("expected pong wait 45s, got %v", cfg.Realtime.PongWait)
	}
	if len(cfg.Accounts.Seed) != 2 || cfg.Accounts.Seed[0].Role != "admin" || cfg.Accounts.Seed[1].Username != "river" {
		t.Errorf("unexpected account seed %+v", cfg.Accounts.Seed)
	}
	if cfg.RateLimit.SweepInterval != 300*time.Second {
		t.Errorf("expected default sweep interval, got %v", cfg.RateLimit.SweepInterval)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 8443\nsecurity:\n  jwt_secret: " + testSecret + "\n  cors_origins:\n    - https://map.example\naccounts:\n  seed:\n    - id: \"1\"\n      username: duty-officer\n      role: admin\nevents:\n  subject_prefix: floods\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("expected port from file, got %d", cfg.Server.Port)
	}
	if cfg.Events.SubjectPrefix != "floods" {
		t.Errorf("expected subject prefix from file, got %q", cfg.Events.SubjectPrefix)
	}
	if len(cfg.Accounts.Seed) != 1 || cfg.Accounts.Seed[0].ID != "1" {
		t.Errorf("expected seed account from file, got %+v", cfg.Accounts.Seed)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "https://map.example" {
		t.Errorf("unexpected CORS origins %v", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	if got := envTransformFunc("NATS_URL"); got != "events.url" {
		t.Errorf("NATS_URL mapped to %q", got)
	}
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unmapped variable should be dropped, got %q", got)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if s.Addr() != "127.0.0.1:8000" {
		t.Errorf("unexpected addr %s", s.Addr())
	}
}
