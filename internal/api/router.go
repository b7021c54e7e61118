package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the API routes. events, if non-nil, is served at
// GET /events behind the same auth as everything else.
func NewRouter(reminders Reminders, notes Notes, authEnabled bool, token string, events http.Handler, logger *slog.Logger) chi.Router {
	h := NewHandler(reminders, notes, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/reminders", h.ListReminders)
	r.Post("/reminders", h.CreateReminder)
	r.Delete("/reminders/{task}", h.DeleteReminder)

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)

	r.Get("/search", h.Search)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	return r
}

// NewServerHandler wraps the API router with request middleware and the
// unauthenticated health endpoints. ready reports whether startup finished.
func NewServerHandler(apiRouter http.Handler, ready func() bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/api", apiRouter)
	return r
}
