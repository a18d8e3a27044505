// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/hydroalert/config.yaml",
	"/etc/hydroalert/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			SessionTimeout:    60 * time.Minute,
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: false,
			TrustForwardedFor: true,
		},
		RateLimit: RateLimitConfig{
			SweepInterval: 300 * time.Second,
			Retention:     3600 * time.Second,
		},
		Realtime: RealtimeConfig{
			WriteWait:       10 * time.Second,
			PongWait:        60 * time.Second,
			MaxMessageSize:  64 * 1024,
			InboundRate:     20,
			InboundBurst:    40,
			DefaultRadiusKM: 1.0,
		},
		Accounts: AccountsConfig{
			Store:           "memory",
			Path:            "/data/accounts",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Events: EventsConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			Embedded:      false,
			Host:          "127.0.0.1",
			Port:          4222,
			SubjectPrefix: "hydroalert",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}
	if err := processSeedAccounts(k); err != nil {
		return nil, fmt.Errorf("failed to process account seed: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
// Values loaded from YAML are already slices and are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			continue
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// processSeedAccounts expands an ACCOUNT_SEED string of id:username[:role]
// entries into the list form a YAML file would produce.
func processSeedAccounts(k *koanf.Koanf) error {
	raw, ok := k.Get("accounts.seed").(string)
	if !ok {
		return nil
	}
	seeds, err := parseSeedAccounts(raw)
	if err != nil {
		return err
	}
	entries := make([]interface{}, 0, len(seeds))
	for _, s := range seeds {
		entries = append(entries, map[string]interface{}{
			"id":       s.ID,
			"username": s.Username,
			"role":     s.Role,
		})
	}
	return k.Set("accounts.seed", entries)
}

func parseSeedAccounts(raw string) ([]SeedAccount, error) {
	var out []SeedAccount
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("ACCOUNT_SEED entry %q must be id:username[:role]", entry)
		}
		s := SeedAccount{ID: strings.TrimSpace(parts[0]), Username: strings.TrimSpace(parts[1]), Role: "user"}
		if len(parts) == 3 {
			s.Role = strings.TrimSpace(parts[2])
		}
		out = append(out, s)
	}
	return out, nil
}

var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"cors_origins":        "security.cors_origins",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"trust_forwarded_for": "security.trust_forwarded_for",

	"rate_limit_sweep_interval": "rate_limit.sweep_interval",
	"rate_limit_retention":      "rate_limit.retention",

	"ws_write_wait":         "realtime.write_wait",
	"ws_pong_wait":          "realtime.pong_wait",
	"ws_max_message_size":   "realtime.max_message_size",
	"ws_inbound_rate":       "realtime.inbound_rate",
	"ws_inbound_burst":      "realtime.inbound_burst",
	"map_default_radius_km": "realtime.default_radius_km",

	"account_store":            "accounts.store",
	"account_store_path":       "accounts.path",
	"account_breaker_failures": "accounts.breaker_failures",
	"account_breaker_timeout":  "accounts.breaker_timeout",
	"account_seed":             "accounts.seed",

	"nats_enabled":        "events.enabled",
	"nats_url":            "events.url",
	"nats_embedded":       "events.embedded",
	"nats_host":           "events.host",
	"nats_port":           "events.port",
	"nats_subject_prefix": "events.subject_prefix",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps HTTP_PORT style names to koanf paths. Unknown
// variables map to "" and are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
