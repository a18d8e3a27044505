// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
)

// BreakerConfig tunes the directory circuit breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
}

// BreakerDirectory guards an AccountDirectory with a circuit breaker.
// ErrAccountNotFound is an answer, not a failure, and does not trip it.
type BreakerDirectory struct {
	next AccountDirectory
	cb   *gobreaker.CircuitBreaker[*Account]
}

// NewBreakerDirectory wraps next.
func NewBreakerDirectory(next AccountDirectory, cfg BreakerConfig) *BreakerDirectory {
	if cfg.Name == "" {
		cfg.Name = "account-directory"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAccountNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return &BreakerDirectory{next: next, cb: gobreaker.NewCircuitBreaker[*Account](settings)}
}

func (d *BreakerDirectory) Lookup(ctx context.Context, subject string) (*Account, error) {
	account, err := d.cb.Execute(func() (*Account, error) {
		return d.next.Lookup(ctx, subject)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	return account, err
}

// Upsert bypasses the breaker so account updates are never dropped.
func (d *BreakerDirectory) Upsert(ctx context.Context, account *Account) error {
	return d.next.Upsert(ctx, account)
}

// Delete bypasses the breaker like Upsert.
func (d *BreakerDirectory) Delete(ctx context.Context, subject string) error {
	return d.next.Delete(ctx, subject)
}

// State reports the current breaker state.
func (d *BreakerDirectory) State() gobreaker.State {
	return d.cb.State()
}
