package reminder

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/starford/deskmate/internal/apperr"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.Local)
}

func testStore(t *testing.T, clock *fakeClock) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reminders.json")
	return NewStore(path, WithClock(clock.Now), WithLogger(quietLogger()))
}

func TestAdd_RollsOverWhenTimePassed(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 17, 0)))
	r, err := s.Add("water plants", "4:00 pm")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if want := at(19, 16, 0); !r.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", r.FireAt, want)
	}
	if !r.FireAt.After(r.CreatedAt) {
		t.Error("FireAt must be after CreatedAt")
	}
}

func TestAdd_LaterToday(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 15, 0)))
	r, err := s.Add("water plants", "4pm")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if want := at(18, 16, 0); !r.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", r.FireAt, want)
	}
}

func TestAdd_ExactlyNowRollsOver(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 16, 0)))
	r, err := s.Add("stretch", "16:00")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if want := at(19, 16, 0); !r.FireAt.Equal(want) {
		t.Errorf("FireAt = %v, want %v", r.FireAt, want)
	}
}

func TestAdd_Rejects(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	if _, err := s.Add("water plants", "whenever"); !errors.Is(err, apperr.ErrInvalidTime) {
		t.Errorf("err = %v, want ErrInvalidTime", err)
	}
	if _, err := s.Add("   ", "4pm"); !errors.Is(err, apperr.ErrEmptyTask) {
		t.Errorf("err = %v, want ErrEmptyTask", err)
	}
	if got := len(s.List()); got != 0 {
		t.Errorf("len = %d, want 0", got)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("rejected adds must not write the store")
	}
}

func TestList_InsertionOrder(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	_, _ = s.Add("late", "11pm")
	_, _ = s.Add("early", "10am")
	list := s.List()
	if len(list) != 2 || list[0].Task != "late" || list[1].Task != "early" {
		t.Errorf("list = %+v", list)
	}
	list[0].Task = "mutated"
	if s.List()[0].Task != "late" {
		t.Error("List must return a copy")
	}
}

func TestPersistRoundTrip(t *testing.T) {
	clock := newFakeClock(at(18, 9, 0))
	s := testStore(t, clock)
	_, _ = s.Add("water plants", "4:00 pm")
	_, _ = s.Add("call mom", "8:30")
	_, _ = s.Add("take out bins", "7am")

	reloaded := NewStore(s.Path(), WithLogger(quietLogger()))
	reloaded.Load()

	want, got := s.List(), reloaded.List()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Task != want[i].Task || !got[i].FireAt.Equal(want[i].FireAt) || got[i].ID != want[i].ID {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
		if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("[%d] CreatedAt = %v, want %v", i, got[i].CreatedAt, want[i].CreatedAt)
		}
	}
}

func TestRemove_CaseInsensitive(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	_, _ = s.Add("water plants", "4pm")
	_, _ = s.Add("water plants", "6pm")

	if !s.Remove("Water Plants") {
		t.Fatal("Remove should match case-insensitively")
	}
	list := s.List()
	if len(list) != 1 || list[0].FireAt.Hour() != 18 {
		t.Errorf("first occurrence should be removed, left %+v", list)
	}

	reloaded := NewStore(s.Path(), WithLogger(quietLogger()))
	reloaded.Load()
	if len(reloaded.List()) != 1 {
		t.Error("Remove must persist")
	}
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	_, _ = s.Add("water plants", "4pm")
	if s.Remove("feed the cat") {
		t.Error("Remove of absent task reported success")
	}
	if len(s.List()) != 1 {
		t.Error("Remove of absent task changed the store")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	s.Load()
	if len(s.List()) != 0 {
		t.Error("missing file should give an empty store")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	_, _ = s.Add("keep me?", "4pm")
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Load()
	if len(s.List()) != 0 {
		t.Error("corrupt file should give an empty store")
	}
}

func TestLoad_LegacyRecords(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	fireAt := at(20, 16, 0)
	legacy := `[
    {"task": "water plants", "time": "2026-10-20 04:00 PM", "timestamp": ` +
		formatEpoch(fireAt) + `},
    {"task": "", "time": "", "timestamp": 0}
]`
	if err := os.WriteFile(s.Path(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Load()
	list := s.List()
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].ID == "" {
		t.Error("legacy record should get an id")
	}
	if !list[0].FireAt.Equal(fireAt) {
		t.Errorf("FireAt = %v, want %v", list[0].FireAt, fireAt)
	}
}

func TestAdd_SaveFailureKeepsReminder(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(filepath.Join(blocker, "reminders.json"),
		WithClock(newFakeClock(at(18, 9, 0)).Now), WithLogger(quietLogger()))

	if _, err := s.Add("water plants", "4pm"); err != nil {
		t.Fatalf("Add should not fail on save error: %v", err)
	}
	if len(s.List()) != 1 {
		t.Error("reminder should be kept in memory")
	}
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	s := testStore(t, newFakeClock(at(18, 9, 0)))
	var kinds []EventKind
	s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	_, _ = s.Add("water plants", "4pm")
	s.Remove("water plants")

	if len(kinds) != 2 || kinds[0] != EventAdded || kinds[1] != EventRemoved {
		t.Errorf("events = %v", kinds)
	}
}

func formatEpoch(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
