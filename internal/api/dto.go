package api

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/deskmate/internal/index"
	"github.com/starford/deskmate/internal/models"
	"github.com/starford/deskmate/internal/noteservice"
	"github.com/starford/deskmate/internal/reminder"
)

// CreateReminderRequest is the body of POST /api/reminders.
type CreateReminderRequest struct {
	Task string `json:"task" example:"water the plants"`
	Time string `json:"time" example:"4pm"`
}

// Validate checks the request shape. Whether Time parses is left to the store.
func (r CreateReminderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Task, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Time, validation.Required, validation.Length(1, 32)),
	)
}

// Reminder is the API form of a reminder.
type Reminder struct {
	ID        string    `json:"id"`
	Task      string    `json:"task"`
	Time      string    `json:"time" example:"04:00 PM"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
}

func reminderDTO(r reminder.Reminder) Reminder {
	return Reminder{
		ID:        r.ID,
		Task:      r.Task,
		Time:      r.FireAt.Format("03:04 PM"),
		FireAt:    r.FireAt,
		CreatedAt: r.CreatedAt,
	}
}

// ReminderListResponse wraps GET /api/reminders.
type ReminderListResponse struct {
	Reminders []Reminder `json:"reminders"`
}

// CreateNoteRequest is the body of POST /api/notes.
type CreateNoteRequest struct {
	Title   string `json:"title" example:"Week 7 graphs"`
	Content string `json:"content" example:"BFS and DFS"`
	Type    string `json:"type" example:"lectures"`
}

// Validate checks the request. An empty type means misc.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Type, validation.In(
			models.NoteTypeLectures, models.NoteTypeAssignments,
			models.NoteTypeProjects, models.NoteTypeMisc,
		)),
	)
}

// NoteDetail is the full note response type.
type NoteDetail = noteservice.NoteDetail

// NoteListItem is one entry of a note listing.
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps GET /api/notes.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps GET /api/search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

func searchDTO(in []index.SearchResult) []SearchResult {
	out := make([]SearchResult, len(in))
	for i, r := range in {
		out[i] = SearchResult(r)
	}
	return out
}
