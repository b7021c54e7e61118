// Package intent classifies free-text commands and extracts their arguments.
package intent

import "strings"

// Category is the purpose of a command.
type Category int

const (
	Unknown Category = iota
	Reminder
	ReminderList
	CleanDesktop
	CleanDownloads
	NoteCreate
	NoteOpen
	NoteSearch
	PdfOpen
	Help
)

var categoryNames = map[Category]string{
	Unknown:        "unknown",
	Reminder:       "reminder",
	ReminderList:   "reminder_list",
	CleanDesktop:   "clean_desktop",
	CleanDownloads: "clean_downloads",
	NoteCreate:     "note_create",
	NoteOpen:       "note_open",
	NoteSearch:     "note_search",
	PdfOpen:        "pdf_open",
	Help:           "help",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "unknown"
}

// Slot names.
const (
	SlotTask = "task"
	SlotTime = "time"
)

// Parsed is the result of classifying one command.
type Parsed struct {
	Category Category
	Slots    map[string]string
}

// Slot returns the named slot and whether it is present and non-empty.
func (p Parsed) Slot(name string) (string, bool) {
	v, ok := p.Slots[name]
	return v, ok && v != ""
}

// SlotsOK reports whether a reminder command yielded both a task and a time.
func (p Parsed) SlotsOK() bool {
	_, hasTask := p.Slot(SlotTask)
	_, hasTime := p.Slot(SlotTime)
	return hasTask && hasTime
}

// rule matches when the command contains every keyword. Keywords are plain
// substrings: "reminders" matches "remind".
type rule struct {
	category Category
	all      []string
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{category: ReminderList, all: []string{"remind", "list"}},
	{category: Reminder, all: []string{"remind"}},
	{category: CleanDesktop, all: []string{"clean", "desktop"}},
	{category: CleanDownloads, all: []string{"clean", "download"}},
	{category: NoteCreate, all: []string{"note", "create"}},
	{category: NoteOpen, all: []string{"note", "open"}},
	{category: NoteSearch, all: []string{"note", "search"}},
	{category: PdfOpen, all: []string{"pdf", "open"}},
	{category: Help, all: []string{"help"}},
}

func (r rule) matches(cmd string) bool {
	for _, kw := range r.all {
		if !strings.Contains(cmd, kw) {
			return false
		}
	}
	return true
}

// Parse classifies command and, for reminder commands, extracts the task
// and time slots. Matching is case-insensitive.
func Parse(command string) Parsed {
	cmd := strings.ToLower(strings.TrimSpace(command))
	p := Parsed{Category: Unknown, Slots: map[string]string{}}
	for _, r := range rules {
		if r.matches(cmd) {
			p.Category = r.category
			break
		}
	}
	if p.Category == Reminder {
		if slots, ok := ExtractReminder(cmd); ok {
			p.Slots = slots
		}
	}
	return p
}
