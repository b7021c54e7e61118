// Package timeparse turns spoken clock times ("4pm", "4:30 pm", "16:00")
// into an hour and minute of the day.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// layouts are attempted in order. Meridiem forms come first so that an
// explicit "pm" always wins over the bare-number forms, and the 12-hour bare
// forms come before the 24-hour ones so "16" still ends up as 16:00.
var layouts = []string{
	"3:04 pm",
	"3:04pm",
	"3 pm",
	"3pm",
	"3:04",
	"3",
	"15:04",
	"15",
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant at t on the calendar day of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, day.Location())
}

// Parse extracts a clock time from text. ok is false when no supported
// format matches or the hour/minute is out of range; callers must report
// that instead of falling back to a default.
func Parse(text string) (TimeOfDay, bool) {
	s := normalize(text)
	if s == "" {
		return TimeOfDay{}, false
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}, true
		}
	}
	return parseManual(s)
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(text string) TimeOfDay {
	t, ok := Parse(text)
	if !ok {
		panic("timeparse: invalid time " + strconv.Quote(text))
	}
	return t
}

func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "a.m.", "am")
	s = strings.ReplaceAll(s, "p.m.", "pm")
	s = strings.ReplaceAll(s, "a.m", "am")
	s = strings.ReplaceAll(s, "p.m", "pm")
	return strings.Join(strings.Fields(s), " ")
}

// parseManual handles "H:M" shapes the layouts reject, such as single-digit
// minutes ("4:5 pm") or a 24-hour clock with a stray meridiem ("13:00 pm").
// A meridiem is honored whenever the hour is a valid 12-hour value.
func parseManual(s string) (TimeOfDay, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeOfDay{}, false
	}
	fields := strings.Fields(parts[1])
	if len(fields) == 0 {
		return TimeOfDay{}, false
	}
	minute, err := strconv.Atoi(fields[0])
	if err != nil {
		return TimeOfDay{}, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, false
	}
	if len(fields) > 1 && hour >= 1 && hour <= 12 {
		switch fields[1] {
		case "am":
			hour %= 12
		case "pm":
			hour = hour%12 + 12
		}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, true
}
