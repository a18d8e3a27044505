// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"context"
	"fmt"
	"sync"
)

// Account is the current state of a user account as known to this
// service. Account CRUD happens elsewhere; updates arrive as events.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        Role   `json:"role"`
	Active      bool   `json:"active"`
}

// Validate checks the fields required to store an account.
func (a *Account) Validate() error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("account id is required")
	}
	return nil
}

// Identity projects the account onto an Identity.
func (a *Account) Identity() Identity {
	name := a.DisplayName
	if name == "" {
		name = a.Username
	}
	return Identity{ID: a.ID, Username: a.Username, DisplayName: name, Role: a.Role}
}

// AccountDirectory resolves token subjects to current account state.
type AccountDirectory interface {
	// Lookup returns ErrAccountNotFound for unknown subjects.
	Lookup(ctx context.Context, subject string) (*Account, error)
	Upsert(ctx context.Context, account *Account) error
	// Delete removes subject. Deleting an unknown subject is not an error.
	Delete(ctx context.Context, subject string) error
}

// MemoryDirectory is an in-process AccountDirectory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryDirectory creates a directory seeded with accounts.
func NewMemoryDirectory(accounts ...Account) *MemoryDirectory {
	d := &MemoryDirectory{accounts: make(map[string]Account, len(accounts))}
	for _, a := range accounts {
		d.accounts[a.ID] = a
	}
	return d
}

func (d *MemoryDirectory) Lookup(_ context.Context, subject string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[subject]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (d *MemoryDirectory) Upsert(_ context.Context, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accounts[account.ID] = *account
	return nil
}

func (d *MemoryDirectory) Delete(_ context.Context, subject string) error {
	if subject == "" {
		return fmt.Errorf("account id is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.accounts, subject)
	return nil
}
