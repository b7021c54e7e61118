package internal

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelError
	cfg.Reminders.Path = filepath.Join(dir, "reminders.json")
	cfg.Reminders.PollInterval = time.Second
	cfg.Voice.ListenTimeout = time.Second
	cfg.Notes.Path = filepath.Join(dir, "notes")
	cfg.SQLite.Path = filepath.Join(dir, "index.db")
	cfg.Files = FilesConfig{
		Desktop:    filepath.Join(dir, "Desktop"),
		Downloads:  filepath.Join(dir, "Downloads"),
		SearchRoot: dir,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_UnknownMode(t *testing.T) {
	err := Run(context.Background(), WithConfig(testConfig(t)), WithMode("daemon"))
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("expected unknown mode error, got %v", err)
	}
}

func TestRun_ConsoleConversation(t *testing.T) {
	cfg := testConfig(t)
	in := strings.NewReader("remind me to stretch at 11:59 pm\nlist my reminders\ngoodbye\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := Run(ctx, WithConfig(cfg), WithIO(in, &out)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Hello! I'm your desk assistant.",
		"stretch",
		"Goodbye! Have a great day!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRun_ServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, WithConfig(cfg), WithMode(ModeServe)) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
