// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/config"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/supervisor/services"
)

// accountGCInterval is how often the badger value log is compacted.
const accountGCInterval = 10 * time.Minute

// accountStore is the opened account directory plus what main needs to
// supervise and close it.
type accountStore struct {
	directory auth.AccountDirectory
	gc        *services.PeriodicService
	close     func() error
}

// openAccountStore opens the configured directory and wraps it in the
// circuit breaker.
func openAccountStore(cfg config.AccountsConfig) (*accountStore, error) {
	breaker := auth.BreakerConfig{
		Name:             "account-directory",
		FailureThreshold: cfg.BreakerFailures,
		Timeout:          cfg.BreakerTimeout,
	}

	switch cfg.Store {
	case "badger":
		dir, err := auth.OpenBadgerDirectory(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open account store: %w", err)
		}
		if err := seedAccounts(context.Background(), dir, cfg.Seed); err != nil {
			_ = dir.Close()
			return nil, err
		}
		return &accountStore{
			directory: auth.NewBreakerDirectory(dir, breaker),
			gc: services.NewPeriodicService("account-store-gc", accountGCInterval, func(ctx context.Context) error {
				return dir.CollectGarbage(ctx)
			}),
			close: dir.Close,
		}, nil
	default:
		dir := auth.NewMemoryDirectory()
		if err := seedAccounts(context.Background(), dir, cfg.Seed); err != nil {
			return nil, err
		}
		return &accountStore{
			directory: auth.NewBreakerDirectory(dir, breaker),
			close:     func() error { return nil },
		}, nil
	}
}

// seedAccounts writes each seed account that the directory does not
// already hold. Stored accounts win so a persisted deactivation survives
// a restart.
func seedAccounts(ctx context.Context, dir auth.AccountDirectory, seeds []config.SeedAccount) error {
	added := 0
	for _, s := range seeds {
		_, err := dir.Lookup(ctx, s.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, auth.ErrAccountNotFound) {
			return fmt.Errorf("seed account %s: %w", s.ID, err)
		}
		role, err := auth.ParseRole(s.Role)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", s.ID, err)
		}
		if err := dir.Upsert(ctx, &auth.Account{ID: s.ID, Username: s.Username, Role: role, Active: true}); err != nil {
			return fmt.Errorf("seed account %s: %w", s.ID, err)
		}
		added++
	}
	if added > 0 {
		logging.Info().Int("accounts", added).Msg("Seeded account directory")
	}
	return nil
}
