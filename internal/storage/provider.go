// Package storage defines the notes vault file-system abstraction and the
// atomic file write used by every on-disk store.
package storage

import "github.com/starford/deskmate/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every note file under dir (relative to vault root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// MkdirAll creates dir (relative to vault root) and any parents.
	MkdirAll(dir string) error
	// Root returns the absolute vault directory.
	Root() string
}
