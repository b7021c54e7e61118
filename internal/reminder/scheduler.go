package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval is how often the scheduler checks for due reminders.
const DefaultPollInterval = 30 * time.Second

// AnnounceFunc delivers a due reminder to the user. It runs synchronously on
// the scheduler goroutine.
type AnnounceFunc func(ctx context.Context, r Reminder) error

// State is the scheduler lifecycle state.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Scheduler polls a Store and announces reminders once they are due.
type Scheduler struct {
	store    *Store
	announce AnnounceFunc
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	// lifecycle serializes Start and Stop; mu guards the fields below and
	// is the only lock the loop itself takes.
	lifecycle sync.Mutex
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the poll interval. Non-positive values are ignored.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerClock overrides the time source used to decide what is due.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) { s.now = now }
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) { s.logger = logger }
}

// NewScheduler creates a stopped scheduler over store.
func NewScheduler(store *Store, announce AnnounceFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		store:    store,
		announce: announce,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports whether the poll loop is running.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return Running
	}
	return Stopped
}

// Start launches the poll loop. It is a no-op when already running. The loop
// ends when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		defer s.release(done)
		s.loop(loopCtx)
	}()
	s.logger.Info("scheduler: started", slog.Duration("interval", s.interval))
}

// Stop ends the poll loop and waits for it to exit, including any announce
// and save already in progress. No reminder fires after Stop returns. Safe
// to call more than once. A Start issued meanwhile waits for the join, so
// two loops never overlap.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("scheduler: stopped")
}

// release clears the running state once the loop has finished, whether it
// ended through Stop or because its parent context was cancelled.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == done {
		s.cancel()
		s.cancel, s.done = nil, nil
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll runs one due-check pass over a snapshot of the store and returns the
// number of reminders fired. A failing announcement is logged and the
// reminder is still removed, so nothing fires twice.
func (s *Scheduler) Poll(ctx context.Context) int {
	now := s.now()
	fired := 0
	for _, r := range s.store.List() {
		if ctx.Err() != nil {
			break
		}
		if !r.Due(now) || !s.store.has(r.ID) {
			continue
		}
		if err := s.fire(ctx, r); err != nil {
			s.logger.Error("scheduler: announce failed",
				slog.String("id", r.ID),
				slog.String("task", r.Task),
				slog.String("error", err.Error()))
		}
		if s.store.removeID(r.ID, EventFired) {
			fired++
		}
	}
	return fired
}

func (s *Scheduler) fire(ctx context.Context, r Reminder) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scheduler: announce panic: %v", rec)
		}
	}()
	s.logger.Info("scheduler: reminder due", slog.String("id", r.ID), slog.String("task", r.Task))
	if s.announce == nil {
		return nil
	}
	return s.announce(ctx, r)
}
