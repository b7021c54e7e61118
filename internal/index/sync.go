package index

import (
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/deskmate/internal/models"
	"github.com/starford/deskmate/internal/parser"
	"github.com/starford/deskmate/internal/storage"
)

// Sync brings the index in line with the vault: new or changed notes are
// parsed and upserted, notes gone from disk are dropped.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	indexed := 0
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexNote(db, m.Path, data, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed++
	}

	removed := 0
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteNote(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
	}

	logger.Info("sync: done",
		slog.Int("notes", len(metas)),
		slog.Int("indexed", indexed),
		slog.Int("removed", removed),
	)
	return nil
}

// IndexNote parses a note and upserts it. The note type comes from the
// header when valid, otherwise from the subdirectory the note lives in.
func IndexNote(db NoteIndex, rel string, data []byte, modTime time.Time) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}

	noteType := res.Type
	if !models.ValidType(noteType) {
		dir, _, _ := strings.Cut(path.Clean(rel), "/")
		noteType = models.TypeForDir(dir)
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(rel), storage.NoteExt)
	}
	if modTime.IsZero() {
		modTime = time.Now()
	}

	return db.UpsertNote(NoteRow{
		Path:      rel,
		Title:     title,
		Type:      noteType,
		Checksum:  storage.Checksum(data),
		Tags:      res.Tags,
		CreatedAt: res.Created,
		UpdatedAt: modTime,
	}, res.Body)
}
