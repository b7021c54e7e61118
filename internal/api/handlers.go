package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/deskmate/internal/apperr"
	"github.com/starford/deskmate/internal/index"
	"github.com/starford/deskmate/internal/reminder"
)

// Reminders is the reminder store as seen by the API.
type Reminders interface {
	Add(task, timeText string) (reminder.Reminder, error)
	List() []reminder.Reminder
	Remove(task string) bool
}

// Notes is the note service as seen by the API.
type Notes interface {
	CreateNote(ctx context.Context, title, content, noteType string) (string, error)
	GetNote(ctx context.Context, path string) (*NoteDetail, error)
	ListNotes(ctx context.Context, noteType string) ([]NoteListItem, error)
	Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error)
}

// Handler holds API route handlers.
type Handler struct {
	reminders Reminders
	notes     Notes
	logger    *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(reminders Reminders, notes Notes, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{reminders: reminders, notes: notes, logger: logger}
}

// internalError logs err and answers 500 without leaking details.
func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

// ListReminders handles GET /api/reminders.
func (h *Handler) ListReminders(w http.ResponseWriter, _ *http.Request) {
	list := h.reminders.List()
	out := make([]Reminder, len(list))
	for i, r := range list {
		out[i] = reminderDTO(r)
	}
	writeJSON(w, http.StatusOK, ReminderListResponse{Reminders: out})
}

// CreateReminder handles POST /api/reminders.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rem, err := h.reminders.Add(req.Task, req.Time)
	switch {
	case errors.Is(err, apperr.ErrInvalidTime):
		writeJSON(w, http.StatusBadRequest, errorBody("could not understand the time "+strconv.Quote(req.Time)))
		return
	case errors.Is(err, apperr.ErrEmptyTask):
		writeJSON(w, http.StatusBadRequest, errorBody("task is required"))
		return
	case err != nil:
		h.internalError(w, "create reminder failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, reminderDTO(rem))
}

// DeleteReminder handles DELETE /api/reminders/{task}. The task matches
// case-insensitively.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	task, err := url.PathUnescape(chi.URLParam(r, "task"))
	if err != nil || strings.TrimSpace(task) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("task is required"))
		return
	}
	if !h.reminders.Remove(task) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes handles GET /api/notes?type=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.notes.ListNotes(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		h.internalError(w, "list notes failed", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	path, err := h.notes.CreateNote(r.Context(), req.Title, req.Content, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("already exists"))
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			h.internalError(w, "create note failed", err)
		}
		return
	}
	note, err := h.notes.GetNote(r.Context(), path)
	if err != nil {
		h.internalError(w, "read created note failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// notePath extracts the note path after /api/notes/, accepting encoded
// slashes (lecture_notes%2Fx.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// GetNote handles GET /api/notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.notes.GetNote(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		h.internalError(w, "get note failed", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.notes.Search(r.Context(), q, limit)
	if err != nil {
		h.internalError(w, "search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: searchDTO(results)})
}
