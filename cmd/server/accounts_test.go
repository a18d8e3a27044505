// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/config"
	"github.com/tomtom215/hydroalert/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func TestOpenAccountStoreSeedsMemoryDirectory(t *testing.T) {
	store, err := openAccountStore(config.AccountsConfig{
		Store:           "memory",
		BreakerFailures: 5,
		BreakerTimeout:  time.Second,
		Seed: []config.SeedAccount{
			{ID: "1", Username: "duty-officer", Role: "admin"},
			{ID: "2", Username: "river", Role: "user"},
		},
	})
	if err != nil {
		t.Fatalf("openAccountStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.close() })

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	authenticator := auth.NewAuthenticator(tokens, store.directory)

	tok, err := tokens.GenerateToken("1", "duty-officer", auth.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	identity, err := authenticator.Authenticate(context.Background(), tok)
	if err != nil {
		t.Fatalf("seeded admin should authenticate: %v", err)
	}
	if !identity.IsAdmin() || identity.Username != "duty-officer" {
		t.Errorf("unexpected identity %+v", identity)
	}
}

func TestSeedAccountsKeepsStoredState(t *testing.T) {
	dir := auth.NewMemoryDirectory(auth.Account{ID: "2", Username: "river", Role: auth.RoleStandard, Active: false})
	seeds := []config.SeedAccount{
		{ID: "2", Username: "river", Role: "admin"},
		{ID: "3", Username: "delta", Role: "user"},
	}
	if err := seedAccounts(context.Background(), dir, seeds); err != nil {
		t.Fatalf("seedAccounts() error = %v", err)
	}

	existing, err := dir.Lookup(context.Background(), "2")
	if err != nil {
		t.Fatal(err)
	}
	if existing.Active || existing.Role != auth.RoleStandard {
		t.Errorf("stored account was overwritten: %+v", existing)
	}
	added, err := dir.Lookup(context.Background(), "3")
	if err != nil {
		t.Fatalf("seed account not added: %v", err)
	}
	if !added.Active || added.Role != auth.RoleStandard {
		t.Errorf("unexpected seeded account %+v", added)
	}
}
