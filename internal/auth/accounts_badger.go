// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	accountKeyPrefix = "account:"
	gcDiscardRatio   = 0.5
)

// BadgerDirectory persists account state in BadgerDB so revocations
// survive restarts.
type BadgerDirectory struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerDirectory wraps an already opened database. Close does not
// close db.
func NewBadgerDirectory(db *badger.DB) *BadgerDirectory {
	return &BadgerDirectory{db: db}
}

// OpenBadgerDirectory opens (or creates) a database at path.
func OpenBadgerDirectory(path string) (*BadgerDirectory, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open account store: %w", err)
	}
	return &BadgerDirectory{db: db, ownsDB: true}, nil
}

func (d *BadgerDirectory) Lookup(_ context.Context, subject string) (*Account, error) {
	var account Account
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(accountKeyPrefix + subject))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("get account: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &account)
		})
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (d *BadgerDirectory) Upsert(_ context.Context, account *Account) error {
	if err := account.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(accountKeyPrefix+account.ID), data)
	})
}

// Delete removes an account. Subsequent lookups report ErrAccountNotFound.
func (d *BadgerDirectory) Delete(_ context.Context, subject string) error {
	if subject == "" {
		return fmt.Errorf("account id is required")
	}
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(accountKeyPrefix + subject))
	})
}

// CollectGarbage reclaims value log space until badger reports nothing
// left to rewrite. In-memory databases have no value log and return nil.
func (d *BadgerDirectory) CollectGarbage(_ context.Context) error {
	if d.db.Opts().InMemory {
		return nil
	}
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("account store gc: %w", err)
		}
	}
}

// Close releases the database if this directory opened it.
func (d *BadgerDirectory) Close() error {
	if !d.ownsDB {
		return nil
	}
	return d.db.Close()
}
