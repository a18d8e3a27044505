// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/hydroalert/internal/auth"
)

// MinJWTSecretLength is the shortest accepted HS256 secret.
const MinJWTSecretLength = 32

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateRealtime(); err != nil {
		return err
	}
	if err := c.validateAccounts(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if c.Server.IsProduction() {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if c.RateLimit.SweepInterval <= 0 {
		return fmt.Errorf("RATE_LIMIT_SWEEP_INTERVAL must be positive")
	}
	if c.RateLimit.Retention <= 0 {
		return fmt.Errorf("RATE_LIMIT_RETENTION must be positive")
	}
	return nil
}

func (c *Config) validateRealtime() error {
	r := c.Realtime
	if r.WriteWait <= 0 || r.PongWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT and WS_PONG_WAIT must be positive")
	}
	if r.MaxMessageSize <= 0 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be positive")
	}
	if r.InboundRate < 0 {
		return fmt.Errorf("WS_INBOUND_RATE must not be negative")
	}
	if r.InboundRate > 0 && r.InboundBurst < 1 {
		return fmt.Errorf("WS_INBOUND_BURST must be at least 1 when WS_INBOUND_RATE is set")
	}
	if r.DefaultRadiusKM <= 0 {
		return fmt.Errorf("MAP_DEFAULT_RADIUS_KM must be positive")
	}
	return nil
}

func (c *Config) validateAccounts() error {
	switch c.Accounts.Store {
	case "memory":
	case "badger":
		if c.Accounts.Path == "" {
			return fmt.Errorf("ACCOUNT_STORE_PATH is required when ACCOUNT_STORE=badger")
		}
	default:
		return fmt.Errorf("ACCOUNT_STORE must be memory or badger, got %q", c.Accounts.Store)
	}
	if c.Accounts.BreakerFailures == 0 {
		return fmt.Errorf("ACCOUNT_BREAKER_FAILURES must be at least 1")
	}

	seen := make(map[string]struct{}, len(c.Accounts.Seed))
	for i, a := range c.Accounts.Seed {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("ACCOUNT_SEED entry %d has no id", i)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("ACCOUNT_SEED lists id %q twice", a.ID)
		}
		seen[a.ID] = struct{}{}
		if _, err := auth.ParseRole(a.Role); err != nil {
			return fmt.Errorf("ACCOUNT_SEED entry %q: %w", a.ID, err)
		}
	}

	// A memory directory is only populated by seeds and NATS account updates.
	if c.Accounts.Store == "memory" && len(c.Accounts.Seed) == 0 && !c.Events.Enabled {
		return fmt.Errorf("ACCOUNT_STORE=memory needs ACCOUNT_SEED or NATS_ENABLED=true, otherwise no account can authenticate")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Events.SubjectPrefix) == "" {
		return fmt.Errorf("NATS_SUBJECT_PREFIX is required when NATS_ENABLED=true")
	}
	if c.Events.Embedded {
		if c.Events.Port < 1 || c.Events.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", c.Events.Port)
		}
		return nil
	}
	u, err := url.Parse(c.Events.URL)
	if err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("NATS_URL must use nats:// or tls://, got %q", u.Scheme)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
