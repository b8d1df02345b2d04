// Reposcout - Repository Discovery and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reposcout

package preferences

import (
	"errors"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/reposcout/internal/models"
)

// newTestStore opens an in-memory BadgerDB so tests need no temp dirs.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("Failed to open in-memory BadgerDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewFromDB(db)
}

func testPrefs() models.UserPreferences {
	prefs := models.DefaultPreferences()
	prefs.Languages = []string{"go", "rust"}
	prefs.Frameworks = []string{"chi"}
	prefs.Domains = []string{"cli"}
	return prefs
}

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := t.Context()
	want := testPrefs()

	if err := store.Set(ctx, "user-1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Languages) != 2 || got.Languages[0] != "go" {
		t.Errorf("Languages = %v, want %v", got.Languages, want.Languages)
	}
	if len(got.Frameworks) != 1 || got.Frameworks[0] != "chi" {
		t.Errorf("Frameworks = %v, want %v", got.Frameworks, want.Frameworks)
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Get(t.Context(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_GetEmptyUserID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Get(t.Context(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := t.Context()

	first := testPrefs()
	if err := store.Set(ctx, "user-1", first); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second := testPrefs()
	second.Languages = []string{"zig"}
	if err := store.Set(ctx, "user-1", second); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Languages) != 1 || got.Languages[0] != "zig" {
		t.Errorf("Languages = %v, want [zig]", got.Languages)
	}
}

func TestStore_SetEmptyUserID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.Set(t.Context(), "", testPrefs()); err == nil {
		t.Error("Set(\"\") error = nil, want error")
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := t.Context()

	if err := store.Set(ctx, "user-1", testPrefs()); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := store.Get(ctx, "user-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again must not error.
	if err := store.Delete(ctx, "user-1"); err != nil {
		t.Errorf("Delete() of missing record error = %v", err)
	}
}

func TestStore_Count(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, id, testPrefs()); err != nil {
			t.Fatalf("Set(%q) error = %v", id, err)
		}
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := t.Context()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			if err := store.Set(ctx, id, testPrefs()); err != nil {
				t.Errorf("Set(%q) error = %v", id, err)
				return
			}
			if _, err := store.Get(ctx, id); err != nil {
				t.Errorf("Get(%q) error = %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 8 {
		t.Errorf("Count() = %d, want 8", count)
	}
}
