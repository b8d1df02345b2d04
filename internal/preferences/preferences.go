// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

// Package preferences persists per-user discovery preferences in BadgerDB.
//
// Preference records are small and read on every recommendation request, so
// the store keeps them in an embedded key-value database rather than the
// analytical store. A missing record is reported via ErrNotFound; callers
// are expected to fall back to models.DefaultPreferences rather than treat
// it as a failure.
package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reposcout/internal/models"
)

// ErrNotFound indicates no preferences have been stored for the user.
var ErrNotFound = errors.New("preferences not found")

// prefKeyPrefix namespaces preference records within the shared BadgerDB.
const prefKeyPrefix = "pref:"

// Store is a BadgerDB-backed preference store. Records are durable across
// restarts and have no TTL; preferences live until overwritten or deleted.
type Store struct {
	db    *badger.DB
	owned bool
}

// New opens a BadgerDB at path and returns a store that owns it. Close
// releases the database.
func New(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	// Preference records are tiny; keep the value log small and sync
	// writes so a crash cannot lose an accepted update.
	opts.ValueLogFileSize = 16 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for preferences: %w", err)
	}
	return &Store{db: db, owned: true}, nil
}

// NewInMemory opens an in-memory store for tests and ephemeral
// deployments. Records do not survive a restart.
func NewInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &Store{db: db, owned: true}, nil
}

// NewFromDB wraps an existing BadgerDB connection. The caller remains
// responsible for closing the database.
func NewFromDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Get retrieves the stored preferences for a user. Returns ErrNotFound when
// no record exists.
func (s *Store) Get(_ context.Context, userID string) (models.UserPreferences, error) {
	var prefs models.UserPreferences
	if userID == "" {
		return prefs, ErrNotFound
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get preferences: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &prefs)
		})
	})
	if err != nil {
		return models.UserPreferences{}, err
	}

	return prefs, nil
}

// Set stores the preferences for a user, replacing any existing record.
func (s *Store) Set(_ context.Context, userID string, prefs models.UserPreferences) error {
	if userID == "" {
		return errors.New("user id cannot be empty")
	}

	data, err := json.Marshal(&prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefKeyPrefix+userID), data)
	})
}

// Delete removes a user's preferences. Deleting a missing record is not an
// error.
func (s *Store) Delete(_ context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(prefKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Count returns the number of stored preference records.
func (s *Store) Count(_ context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// Close closes the underlying database if this store opened it.
func (s *Store) Close() error {
	if s.owned && s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunGC reclaims space from deleted entries. Call periodically in
// production from the maintenance loop.
func (s *Store) RunGC() error {
	return s.db.RunValueLogGC(0.5)
}
