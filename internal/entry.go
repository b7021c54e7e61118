// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/starford/deskmate/internal/api"
	"github.com/starford/deskmate/internal/desktop"
	"github.com/starford/deskmate/internal/dispatch"
	"github.com/starford/deskmate/internal/index"
	"github.com/starford/deskmate/internal/mcpserver"
	"github.com/starford/deskmate/internal/noteservice"
	"github.com/starford/deskmate/internal/reminder"
	"github.com/starford/deskmate/internal/sse"
	"github.com/starford/deskmate/internal/storage"
	"github.com/starford/deskmate/internal/voice"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{
		mode:    ModeConsole,
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.mode != ModeConsole && app.mode != ModeServe {
		return nil, fmt.Errorf("unknown mode %q", app.mode)
	}
	return app, nil
}

// newLogger builds the JSON logger. Logs go to stderr so stdout stays free
// for the conversation and the MCP stdio transport.
func newLogger(cfg ApplicationConfig) (*slog.Logger, io.Closer) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
		}
		w = io.MultiWriter(os.Stderr, rotated)
		closer = rotated
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})), closer
}

type services struct {
	reminders *reminder.Store
	store     *storage.FS
	db        *index.DB
	notes     *noteservice.Service
}

func openServices(cfg *Config, logger *slog.Logger) (*services, error) {
	reminders := reminder.NewStore(cfg.Reminders.Path, reminder.WithLogger(logger))
	reminders.Load()

	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Notes.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	notes := noteservice.NewService(store, db,
		noteservice.WithOpener(desktop.Open),
		noteservice.WithLogger(logger),
	)
	if err := notes.EnsureDirs(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create note dirs: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return &services{reminders: reminders, store: store, db: db, notes: notes}, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, logCloser := newLogger(cfg.App)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("mode", app.mode),
		slog.String("reminders_path", cfg.Reminders.Path),
		slog.String("notes_path", cfg.Notes.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("http_enabled", cfg.App.HTTP.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	broker := sse.NewBroker(0)
	defer broker.Close()
	svc.reminders.Subscribe(broker.PublishReminder)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	var console *voice.Console
	announce := func(_ context.Context, r reminder.Reminder) error {
		logger.Info("reminder due", slog.String("id", r.ID), slog.String("task", r.Task))
		return nil
	}
	if app.mode == ModeConsole {
		console = voice.NewConsole(app.in, app.out,
			voice.WithLogger(logger),
			voice.WithSpeakCommand(cfg.Voice.SpeakCommand),
			voice.WithListenTimeout(cfg.Voice.ListenTimeout),
		)
		announce = func(_ context.Context, r reminder.Reminder) error {
			console.Speak("Reminder: " + r.Task)
			return nil
		}
	}

	scheduler := reminder.NewScheduler(svc.reminders, announce,
		reminder.WithInterval(cfg.Reminders.PollInterval),
		reminder.WithSchedulerLogger(logger),
	)
	scheduler.Start(gCtx)
	defer scheduler.Stop()

	// Keep the index in step with the notes directory.
	g.Go(func() error {
		if err := index.Watch(gCtx, svc.db, svc.store, logger, broker.PublishNote); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	var httpServer *http.Server
	if cfg.App.HTTP.Enabled {
		var ready atomic.Bool
		apiRouter := api.NewRouter(svc.reminders, svc.notes,
			cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, logger)
		httpServer = &http.Server{
			Addr:              cfg.App.HTTP.Address(),
			Handler:           api.NewServerHandler(apiRouter, ready.Load),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			ready.Store(true)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

	if console != nil {
		g.Go(func() error {
			defer cancel()
			d := dispatch.New(svc.reminders, console, desktop.NewOrganizer(logger), svc.notes,
				dispatch.WithLogger(logger),
				dispatch.WithListenTimeout(cfg.Voice.ListenTimeout),
				dispatch.WithPaths(dispatch.Paths{
					Desktop:    cfg.Files.Desktop,
					Downloads:  cfg.Files.Downloads,
					SearchRoot: cfg.Files.SearchRoot,
				}),
			)
			return d.Loop(gCtx, console)
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		if httpServer != nil {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Application stopped")
	return nil
}

// RunMCP serves the reminder and note tools over MCP stdio until stdin
// closes or a termination signal arrives.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, logCloser := newLogger(cfg.App)
	defer logCloser.Close()
	slog.SetDefault(logger)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := mcpserver.New(svc.reminders, svc.notes, app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	// Due reminders reach clients through the store's fired event.
	scheduler := reminder.NewScheduler(svc.reminders,
		func(_ context.Context, r reminder.Reminder) error {
			logger.Info("reminder due", slog.String("id", r.ID), slog.String("task", r.Task))
			return nil
		},
		reminder.WithInterval(cfg.Reminders.PollInterval),
		reminder.WithSchedulerLogger(logger),
	)
	scheduler.Start(gCtx)
	defer scheduler.Stop()

	g.Go(func() error {
		if err := index.Watch(gCtx, svc.db, svc.store, logger, nil); err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		logger.Info("Starting MCP server on stdio", slog.String("version", app.version))
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
