// Package dispatch routes free-text commands to reminders, the file
// organizer and the notes vault, and runs the foreground command loop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/starford/deskmate/internal/apperr"
	"github.com/starford/deskmate/internal/desktop"
	"github.com/starford/deskmate/internal/intent"
	"github.com/starford/deskmate/internal/models"
	"github.com/starford/deskmate/internal/reminder"
)

// Voice is the spoken (or typed) conversation with the user.
type Voice interface {
	Speak(text string)
	Listen(ctx context.Context, timeout time.Duration) (string, bool)
	Confirm(ctx context.Context, prompt string) bool
}

// FileOrganizer sorts and finds files on disk.
type FileOrganizer interface {
	OrganizeDirectory(dir string) (map[string]int, error)
	FindFiles(dir, pattern string) ([]string, error)
}

// Notes is the notes vault.
type Notes interface {
	CreateNote(ctx context.Context, title, content, noteType string) (string, error)
	SearchNotes(ctx context.Context, query string) ([]string, error)
	GetContent(ctx context.Context, path string) (string, error)
	OpenPdf(path string) error
}

// Reminders is the subset of reminder.Store the dispatcher needs.
type Reminders interface {
	Add(task, timeText string) (reminder.Reminder, error)
	List() []reminder.Reminder
}

// Paths are the directories the file commands act on.
type Paths struct {
	Desktop    string
	Downloads  string
	SearchRoot string
}

// Dispatcher handles one command at a time.
type Dispatcher struct {
	reminders     Reminders
	voice         Voice
	files         FileOrganizer
	notes         Notes
	paths         Paths
	listenTimeout time.Duration
	logger        *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithPaths sets the desktop, downloads and PDF search directories.
func WithPaths(p Paths) Option {
	return func(d *Dispatcher) { d.paths = p }
}

// WithListenTimeout bounds each follow-up question.
func WithListenTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.listenTimeout = t
		}
	}
}

// New creates a Dispatcher.
func New(reminders Reminders, voice Voice, files FileOrganizer, notes Notes, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reminders:     reminders,
		voice:         voice,
		files:         files,
		notes:         notes,
		listenTimeout: 5 * time.Second,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch parses and executes a command. It reports whether the command
// was understood and carried out. Failures never escape: they are logged and
// spoken as a generic message.
func (d *Dispatcher) Dispatch(ctx context.Context, command string) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch: panic", slog.String("command", command), slog.Any("panic", r))
			d.voice.Speak(msgGenericError)
			handled = false
		}
	}()

	p := intent.Parse(command)
	d.logger.Debug("dispatch: parsed", slog.String("command", command), slog.String("intent", p.Category.String()))

	var err error
	switch p.Category {
	case intent.Reminder:
		d.setReminder(p)
	case intent.ReminderList:
		d.listReminders()
	case intent.CleanDesktop:
		err = d.clean(ctx, d.paths.Desktop, "your desktop", "desktop")
	case intent.CleanDownloads:
		err = d.clean(ctx, d.paths.Downloads, "your downloads folder", "downloads folder")
	case intent.NoteCreate:
		err = d.createNote(ctx)
	case intent.NoteOpen:
		err = d.openNote(ctx)
	case intent.NoteSearch:
		err = d.searchNotes(ctx)
	case intent.PdfOpen:
		err = d.openPdf(ctx)
	case intent.Help:
		d.voice.Speak(HelpText)
	default:
		d.voice.Speak("I'm sorry, I didn't understand that command.")
		return false
	}

	if err != nil {
		d.logger.Error("dispatch: command failed",
			slog.String("intent", p.Category.String()),
			slog.String("error", err.Error()),
		)
		d.voice.Speak(msgGenericError)
		return false
	}
	return true
}

const msgGenericError = "I encountered an error while processing your command."

func (d *Dispatcher) setReminder(p intent.Parsed) {
	task, okTask := p.Slot(intent.SlotTask)
	when, okTime := p.Slot(intent.SlotTime)
	if !okTask || !okTime {
		d.voice.Speak("I couldn't understand the reminder command. Please try again with a format like 'remind me at 4pm to water the plants'")
		return
	}

	if _, err := d.reminders.Add(task, when); err != nil {
		if !errors.Is(err, apperr.ErrInvalidTime) && !errors.Is(err, apperr.ErrEmptyTask) {
			d.logger.Error("dispatch: add reminder", slog.String("error", err.Error()))
		}
		d.voice.Speak("I couldn't set that reminder. Please try again with a valid time format like '4pm' or '2:30 pm'")
		return
	}
	d.voice.Speak(fmt.Sprintf("I'll remind you about %s at %s", task, when))
}

func (d *Dispatcher) listReminders() {
	list := d.reminders.List()
	if len(list) == 0 {
		d.voice.Speak("You don't have any reminders set.")
		return
	}
	d.voice.Speak("Here are your reminders:")
	for _, r := range list {
		d.voice.Speak(fmt.Sprintf("%s at %s", r.Task, r.FireAt.Format("3:04 PM")))
	}
}

func (d *Dispatcher) clean(ctx context.Context, dir, what, short string) error {
	if !d.voice.Confirm(ctx, "clean "+what) {
		d.voice.Speak(fmt.Sprintf("Okay, I won't clean %s.", what))
		return nil
	}
	moved, err := d.files.OrganizeDirectory(dir)
	if err != nil {
		return fmt.Errorf("organize %s: %w", dir, err)
	}
	d.voice.Speak(fmt.Sprintf("Cleaned your %s. Moved %d files to their appropriate folders.", short, desktop.Total(moved)))
	return nil
}

// ask speaks a question and waits for a non-empty answer.
func (d *Dispatcher) ask(ctx context.Context, question string) (string, bool) {
	d.voice.Speak(question)
	return d.voice.Listen(ctx, d.listenTimeout)
}

func (d *Dispatcher) createNote(ctx context.Context) error {
	title, ok := d.ask(ctx, "What would you like to name this note?")
	if !ok {
		return nil
	}
	content, ok := d.ask(ctx, "What would you like to write in the note?")
	if !ok {
		return nil
	}
	if _, err := d.notes.CreateNote(ctx, title, content, models.NoteTypeMisc); err != nil {
		d.logger.Error("dispatch: create note", slog.String("error", err.Error()))
		d.voice.Speak("I couldn't create that note. Please try again.")
		return nil
	}
	d.voice.Speak("Created note: " + title)
	return nil
}

func (d *Dispatcher) openNote(ctx context.Context) error {
	name, ok := d.ask(ctx, "Which note would you like to open?")
	if !ok {
		return nil
	}
	paths, err := d.notes.SearchNotes(ctx, name)
	if err != nil {
		return fmt.Errorf("search notes: %w", err)
	}
	if len(paths) == 0 {
		d.voice.Speak("I couldn't find any notes matching that name.")
		return nil
	}
	d.voice.Speak(fmt.Sprintf("Found %d matching notes. Opening the first one.", len(paths)))
	content, err := d.notes.GetContent(ctx, paths[0])
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			d.voice.Speak("I couldn't find any notes matching that name.")
			return nil
		}
		return fmt.Errorf("read note: %w", err)
	}
	d.voice.Speak(content)
	return nil
}

func (d *Dispatcher) searchNotes(ctx context.Context) error {
	query, ok := d.ask(ctx, "What would you like to search for in your notes?")
	if !ok {
		return nil
	}
	paths, err := d.notes.SearchNotes(ctx, query)
	if err != nil {
		return fmt.Errorf("search notes: %w", err)
	}
	if len(paths) == 0 {
		d.voice.Speak("I couldn't find any notes matching your search.")
		return nil
	}
	d.voice.Speak(fmt.Sprintf("Found %d matching notes.", len(paths)))
	for i, p := range paths[:min(3, len(paths))] {
		d.voice.Speak(fmt.Sprintf("Note %d: %s", i+1, filepath.Base(p)))
	}
	return nil
}

func (d *Dispatcher) openPdf(ctx context.Context) error {
	name, ok := d.ask(ctx, "Which PDF would you like to open?")
	if !ok {
		return nil
	}
	pdfs, err := d.files.FindFiles(d.paths.SearchRoot, "*"+name+"*.pdf")
	if err != nil {
		return fmt.Errorf("find pdf: %w", err)
	}
	if len(pdfs) == 0 {
		d.voice.Speak("I couldn't find any PDFs matching that name.")
		return nil
	}
	d.voice.Speak(fmt.Sprintf("Found %d matching PDFs. Opening the first one.", len(pdfs)))
	if err := d.notes.OpenPdf(pdfs[0]); err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	return nil
}
