// Package noteservice manages the notes vault: typed note creation, reading,
// listing, search through the index, and opening PDFs.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/starford/deskmate/internal/apperr"
	"github.com/starford/deskmate/internal/index"
	"github.com/starford/deskmate/internal/models"
	"github.com/starford/deskmate/internal/parser"
	"github.com/starford/deskmate/internal/storage"
)

const fileStampLayout = "20060102_150405"

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.NoteIndex
	now    func() time.Time
	open   func(path string) error
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOpener sets how PDFs are opened.
func WithOpener(open func(path string) error) Option {
	return func(s *Service) { s.open = open }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new note service.
func NewService(store storage.Provider, db index.NoteIndex, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		now:    time.Now,
		open:   func(string) error { return errors.New("no opener configured") },
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// EnsureDirs creates the typed note subdirectories.
func (s *Service) EnsureDirs() error {
	for _, d := range models.NoteDirs() {
		if err := s.store.MkdirAll(d); err != nil {
			return fmt.Errorf("noteservice: create %s: %w", d, err)
		}
	}
	return nil
}

// CreateNote writes a new note under the subdirectory for noteType and
// returns its vault-relative path. Unknown types are filed as misc.
func (s *Service) CreateNote(_ context.Context, title, content, noteType string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("noteservice: empty title: %w", apperr.ErrInvalidInput)
	}
	if !models.ValidType(noteType) {
		noteType = models.NoteTypeMisc
	}

	now := s.now()
	rel := path.Join(models.NoteDir(noteType), now.Format(fileStampLayout)+"_"+fileTitle(title)+storage.NoteExt)
	exists, err := s.store.Exists(rel)
	if err != nil {
		return "", fmt.Errorf("noteservice: %w", err)
	}
	if exists {
		return "", fmt.Errorf("noteservice: %s: %w", rel, apperr.ErrAlreadyExists)
	}

	data, err := parser.Render(parser.Header{
		Title:   title,
		Type:    noteType,
		Created: now.Format(parser.CreatedLayout),
	}, content)
	if err != nil {
		return "", err
	}
	if err := s.store.Write(rel, data); err != nil {
		return "", fmt.Errorf("noteservice: write: %w", err)
	}
	if err := s.IndexFile(rel, data); err != nil {
		// The watcher or the next sync picks the note up.
		s.logger.Warn("noteservice: index failed", slog.String("path", rel), slog.String("error", err.Error()))
	}
	s.logger.Info("noteservice: created note", slog.String("path", rel))
	return rel, nil
}

var fileTitleReplacer = strings.NewReplacer(
	" ", "_", "/", "_", `\`, "_", ":", "_", "*", "_",
	"?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// fileTitle turns a title into the file name part, spaces as underscores.
func fileTitle(title string) string {
	return fileTitleReplacer.Replace(title)
}

// GetNote reads and parses a note.
func (s *Service) GetNote(_ context.Context, rel string) (*NoteDetail, error) {
	data, err := s.read(rel)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	noteType := res.Type
	if !models.ValidType(noteType) {
		dir, _, _ := strings.Cut(rel, "/")
		noteType = models.TypeForDir(dir)
	}
	return &NoteDetail{
		Path:      rel,
		Title:     res.Title,
		Type:      noteType,
		Content:   res.Body,
		Checksum:  storage.Checksum(data),
		Tags:      nonNilSlice(res.Tags),
		CreatedAt: res.Created,
	}, nil
}

// GetContent returns the body of a note without its header.
func (s *Service) GetContent(ctx context.Context, rel string) (string, error) {
	n, err := s.GetNote(ctx, rel)
	if err != nil {
		return "", err
	}
	return n.Content, nil
}

func (s *Service) read(rel string) ([]byte, error) {
	data, err := s.store.Read(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("noteservice: %s: %w", rel, apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// ListNotes returns notes of one type, or all notes when noteType is empty.
func (s *Service) ListNotes(_ context.Context, noteType string) ([]NoteListItem, error) {
	if noteType != "" && !models.ValidType(noteType) {
		return nil, fmt.Errorf("noteservice: note type %q: %w", noteType, apperr.ErrInvalidInput)
	}
	rows, err := s.db.ListNotes(noteType)
	if err != nil {
		return nil, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Title:     r.Title,
			Type:      r.Type,
			Tags:      nonNilSlice(r.Tags),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []index.SearchResult{}, nil
	}
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// SearchNotes returns the paths of notes matching query.
func (s *Service) SearchNotes(ctx context.Context, query string) ([]string, error) {
	res, err := s.Search(ctx, query, 0)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(res))
	for i, r := range res {
		out[i] = r.Path
	}
	return out, nil
}

// OpenPdf opens a PDF with the configured opener.
func (s *Service) OpenPdf(p string) error {
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("noteservice: %s: %w", p, apperr.ErrNotFound)
		}
		return err
	}
	if err := s.open(p); err != nil {
		return fmt.Errorf("noteservice: open pdf: %w", err)
	}
	s.logger.Info("noteservice: opened pdf", slog.String("path", p))
	return nil
}

// IndexFile parses data and upserts it into the index.
func (s *Service) IndexFile(rel string, data []byte) error {
	return index.IndexNote(s.db, rel, data, s.now())
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
