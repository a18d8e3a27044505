// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Realtime  RealtimeConfig  `koanf:"realtime"`
	Accounts  AccountsConfig  `koanf:"accounts"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// SecurityConfig holds credential verification and edge settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// TrustForwardedFor uses the first X-Forwarded-For token as the
	// anonymous client address. See package doc.
	TrustForwardedFor bool `koanf:"trust_forwarded_for"`
}

// RateLimitConfig tunes bucket housekeeping. Policy limits are fixed in
// the admission package.
type RateLimitConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
	Retention     time.Duration `koanf:"retention"`
}

// RealtimeConfig holds live-connection transport settings.
type RealtimeConfig struct {
	WriteWait      time.Duration `koanf:"write_wait"`
	PongWait       time.Duration `koanf:"pong_wait"`
	MaxMessageSize int64         `koanf:"max_message_size"`

	// InboundRate is the sustained client->server message rate per
	// connection, in messages per second. Zero disables the throttle.
	InboundRate  float64 `koanf:"inbound_rate"`
	InboundBurst int     `koanf:"inbound_burst"`

	// DefaultRadiusKM is used when a geo event carries no radius.
	DefaultRadiusKM float64 `koanf:"default_radius_km"`
}

// AccountsConfig selects the account directory backing revocation checks.
type AccountsConfig struct {
	Store string `koanf:"store"` // memory or badger
	Path  string `koanf:"path"`

	// BreakerFailures is the number of consecutive lookup failures that
	// open the directory circuit breaker.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`

	// Seed accounts are written to the directory at startup when absent.
	Seed []SeedAccount `koanf:"seed"`
}

// SeedAccount is a bootstrap account. ACCOUNT_SEED carries the same data
// as comma-separated id:username:role entries.
type SeedAccount struct {
	ID       string `koanf:"id"`
	Username string `koanf:"username"`
	Role     string `koanf:"role"` // user or admin
}

// EventsConfig configures NATS ingest of domain events and account updates.
type EventsConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	Embedded      bool   `koanf:"embedded"`
	Host          string `koanf:"host"`
	Port          int    `koanf:"port"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the environment is production.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
