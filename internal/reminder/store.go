// Package reminder keeps pending reminders on disk and fires them when due.
package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/deskmate/internal/apperr"
	"github.com/starford/deskmate/internal/storage"
	"github.com/starford/deskmate/internal/timeparse"
)

// displayLayout is the human-readable "time" field written to disk.
const displayLayout = "2006-01-02 03:04 PM"

// Reminder is a task paired with the instant it should be announced.
type Reminder struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Due reports whether r should fire at now.
func (r Reminder) Due(now time.Time) bool {
	return !now.Before(r.FireAt)
}

// record is the on-disk shape of a reminder.
type record struct {
	ID        string  `json:"id,omitempty"`
	Task      string  `json:"task"`
	Time      string  `json:"time"`
	Timestamp float64 `json:"timestamp"`
	Created   float64 `json:"created,omitempty"`
}

// Store is the ordered collection of pending reminders. Every mutation and
// the file write reflecting it happen under one lock.
type Store struct {
	path   string
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	reminders []Reminder
	listeners []func(Event)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source used for new reminders.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store persisted at path. Call Load to restore
// previously saved reminders.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:   path,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Subscribe registers fn to be called after every change. fn runs outside
// the store lock and must not block for long.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Add schedules task for the next occurrence of the clock time in timeText.
// A time that is not strictly later than now today rolls to tomorrow. A
// failed save is logged and the reminder is kept in memory.
func (s *Store) Add(task, timeText string) (Reminder, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Reminder{}, apperr.ErrEmptyTask
	}
	tod, ok := timeparse.Parse(timeText)
	if !ok {
		return Reminder{}, fmt.Errorf("reminder: %q: %w", timeText, apperr.ErrInvalidTime)
	}

	s.mu.Lock()
	now := s.now()
	fireAt := tod.On(now)
	if !fireAt.After(now) {
		fireAt = tod.On(now.AddDate(0, 0, 1))
	}
	r := Reminder{
		ID:        uuid.NewString(),
		Task:      task,
		FireAt:    fireAt,
		CreatedAt: now,
	}
	s.reminders = append(s.reminders, r)
	s.saveLocked()
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Kind: EventAdded, Reminder: r})
	s.logger.Info("reminder added",
		slog.String("id", r.ID),
		slog.String("task", r.Task),
		slog.Time("fire_at", r.FireAt))
	return r, nil
}

// List returns a copy of the pending reminders in insertion order.
func (s *Store) List() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out
}

// Remove deletes the first reminder whose task matches case-insensitively.
// It reports whether a reminder was removed.
func (s *Store) Remove(task string) bool {
	task = strings.TrimSpace(task)
	return s.removeWhere(EventRemoved, func(r Reminder) bool {
		return strings.EqualFold(r.Task, task)
	})
}

func (s *Store) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reminders {
		if r.ID == id {
			return true
		}
	}
	return false
}

// removeID deletes the reminder with the given id. Used after firing so a
// same-named reminder added meanwhile is left alone.
func (s *Store) removeID(id string, kind EventKind) bool {
	return s.removeWhere(kind, func(r Reminder) bool { return r.ID == id })
}

func (s *Store) removeWhere(kind EventKind, match func(Reminder) bool) bool {
	s.mu.Lock()
	idx := -1
	for i, r := range s.reminders {
		if match(r) {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.reminders[idx]
	s.reminders = append(s.reminders[:idx:idx], s.reminders[idx+1:]...)
	s.saveLocked()
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, Event{Kind: kind, Reminder: removed})
	return true
}

// Load replaces the in-memory reminders with the contents of the backing
// file. A missing or unreadable file leaves the store empty.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = nil
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("reminder: read store failed", slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("reminder: store is corrupt, starting empty", slog.String("path", s.path), slog.String("error", err.Error()))
		return
	}
	for _, rec := range records {
		if strings.TrimSpace(rec.Task) == "" {
			continue
		}
		r := Reminder{
			ID:     rec.ID,
			Task:   rec.Task,
			FireAt: fromEpoch(rec.Timestamp),
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if rec.Created > 0 {
			r.CreatedAt = fromEpoch(rec.Created)
		}
		s.reminders = append(s.reminders, r)
	}
	s.logger.Info("reminders loaded", slog.String("path", s.path), slog.Int("count", len(s.reminders)))
}

// saveLocked writes the full list. Caller must hold s.mu.
func (s *Store) saveLocked() {
	records := make([]record, 0, len(s.reminders))
	for _, r := range s.reminders {
		rec := record{
			ID:        r.ID,
			Task:      r.Task,
			Time:      r.FireAt.Format(displayLayout),
			Timestamp: toEpoch(r.FireAt),
		}
		if !r.CreatedAt.IsZero() {
			rec.Created = toEpoch(r.CreatedAt)
		}
		records = append(records, rec)
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		s.logger.Error("reminder: encode store failed", slog.String("error", err.Error()))
		return
	}
	if err := storage.WriteFileAtomic(s.path, data); err != nil {
		s.logger.Error("reminder: save store failed", slog.String("path", s.path), slog.String("error", err.Error()))
	}
}

func toEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// fromEpoch rounds to the microsecond; float seconds carry no more precision.
func fromEpoch(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	t := time.Unix(int64(whole), int64(frac*1e9))
	return t.Round(time.Microsecond)
}
