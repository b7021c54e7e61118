// Package models defines the note types shared by storage, index and service layers.
package models

import "time"

// Note types and the vault subdirectory each one is filed under.
const (
	NoteTypeLectures    = "lectures"
	NoteTypeAssignments = "assignments"
	NoteTypeProjects    = "projects"
	NoteTypeMisc        = "misc"
)

var noteDirs = map[string]string{
	NoteTypeLectures:    "lecture_notes",
	NoteTypeAssignments: "assignments",
	NoteTypeProjects:    "projects",
	NoteTypeMisc:        "miscellaneous",
}

// NoteDir returns the vault subdirectory for a note type. Unknown types are
// filed as miscellaneous.
func NoteDir(noteType string) string {
	if d, ok := noteDirs[noteType]; ok {
		return d
	}
	return noteDirs[NoteTypeMisc]
}

// TypeForDir maps a vault subdirectory back to its note type. Anything
// outside the known subdirectories is miscellaneous.
func TypeForDir(dir string) string {
	for t, d := range noteDirs {
		if d == dir {
			return t
		}
	}
	return NoteTypeMisc
}

// ValidType reports whether t is one of the note types.
func ValidType(t string) bool {
	_, ok := noteDirs[t]
	return ok
}

// NoteDirs returns every note subdirectory.
func NoteDirs() []string {
	return []string{
		noteDirs[NoteTypeLectures],
		noteDirs[NoteTypeAssignments],
		noteDirs[NoteTypeProjects],
		noteDirs[NoteTypeMisc],
	}
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
