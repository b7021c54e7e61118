// Package testutil provides shared test helpers for vaults, databases and
// reminder stores.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/deskmate/internal/index"
	"github.com/starford/deskmate/internal/reminder"
	"github.com/starford/deskmate/internal/storage"
)

// TestDB creates a SQLite index in a temp dir, closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "deskmate-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary notes directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock stopped at now.
func NewClock(now time.Time) *Clock { return &Clock{now: now} }

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// TestReminders creates a reminder store backed by a temp file and driven
// by clock.
func TestReminders(t *testing.T, clock *Clock) *reminder.Store {
	t.Helper()
	return reminder.NewStore(filepath.Join(t.TempDir(), "reminders.json"),
		reminder.WithClock(clock.Now),
		reminder.WithLogger(Logger()),
	)
}
