// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"
)

func newTestBadgerDirectory(t *testing.T) *BadgerDirectory {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerDirectory(db)
}

func TestBadgerDirectoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := newTestBadgerDirectory(t)

	if _, err := dir.Lookup(ctx, "1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	want := &Account{ID: "1", Username: "ana", DisplayName: "Ana", Role: RoleAdmin, Active: true}
	if err := dir.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := dir.Lookup(ctx, "1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if *got != *want {
		t.Errorf("Lookup() = %+v, want %+v", got, want)
	}

	want.Active = false
	if err := dir.Upsert(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, _ = dir.Lookup(ctx, "1")
	if got.Active {
		t.Error("expected update to replace the stored account")
	}

	if err := dir.Delete(ctx, "1"); err != nil {
		t.Fatal(err)
	}
	if _, err := dir.Lookup(ctx, "1"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound after delete, got %v", err)
	}
}

func TestBadgerDirectoryRejectsEmptyID(t *testing.T) {
	dir := newTestBadgerDirectory(t)
	if err := dir.Upsert(context.Background(), &Account{Username: "x"}); err == nil {
		t.Error("expected error for account without id")
	}
}

func TestAuthenticatorWithBadger(t *testing.T) {
	dir := newTestBadgerDirectory(t)
	_ = dir.Upsert(context.Background(), &Account{ID: "9", Username: "field", Role: RoleStandard, Active: true})

	m := newTestTokens(t)
	a := NewAuthenticator(m, dir)
	id, err := a.Authenticate(context.Background(), mustToken(t, m, "9", RoleStandard))
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id.DisplayName != "field" {
		t.Errorf("expected display name to fall back to username, got %q", id.DisplayName)
	}
}

func TestBadgerDirectoryCollectGarbageInMemory(t *testing.T) {
	dir := newTestBadgerDirectory(t)
	if err := dir.CollectGarbage(context.Background()); err != nil {
		t.Errorf("expected no error for in-memory store, got %v", err)
	}
}
