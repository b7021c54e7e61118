package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/deskmate/internal/storage"
)

// ChangeKind describes an index change made by the watcher.
type ChangeKind string

const (
	NoteCreated ChangeKind = "created"
	NoteUpdated ChangeKind = "updated"
	NoteDeleted ChangeKind = "deleted"
)

// ChangeFunc is called after each watcher-driven index change with the
// note's vault-relative path.
type ChangeFunc func(kind ChangeKind, path string)

const reconcileDelay = 200 * time.Millisecond

type watcher struct {
	db     *DB
	store  storage.Provider
	root   string
	logger *slog.Logger
	notify ChangeFunc
}

func (w *watcher) emit(kind ChangeKind, rel string) {
	w.logger.Debug("watcher: index changed", slog.String("path", rel), slog.String("op", string(kind)))
	if w.notify != nil {
		w.notify(kind, rel)
	}
}

// Watch keeps the index in step with the vault until ctx is cancelled.
// Directories created at runtime are watched too. fsnotify reports a rename
// on the old name only, so renames trigger a short debounced reconcile pass.
func Watch(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, notify ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	w := &watcher{db: db, store: store, root: store.Root(), logger: logger, notify: notify}
	if err := addDirsRecursive(fw, w.root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", w.root))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.handle(fw, ev) {
				reconcile.Reset(reconcileDelay)
			}

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// handle applies one fsnotify event and reports whether a reconcile pass
// is needed.
func (w *watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addDirsRecursive(fw, ev.Name); err != nil {
				w.logger.Warn("watcher: add new dir failed",
					slog.String("path", ev.Name),
					slog.String("error", err.Error()))
			}
			w.indexDir(ev.Name)
			return false
		}
	}

	if !strings.HasSuffix(ev.Name, storage.NoteExt) {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := NoteUpdated
		if ev.Op&fsnotify.Create != 0 {
			kind = NoteCreated
		}
		if w.index(rel) {
			w.emit(kind, rel)
		}
	case ev.Op&fsnotify.Remove != 0:
		w.remove(rel)
	case ev.Op&fsnotify.Rename != 0:
		w.remove(rel)
		return true
	}
	return false
}

func (w *watcher) index(rel string) bool {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	if err := IndexNote(w.db, rel, data, time.Now()); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (w *watcher) remove(rel string) {
	if err := w.db.DeleteNote(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.emit(NoteDeleted, rel)
}

// reconcile drops index entries whose file is gone and indexes files the
// index has not seen or that changed.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		kind := NoteUpdated
		if _, seen := checksums[p]; !seen {
			kind = NoteCreated
		}
		if w.index(p) {
			w.emit(kind, p)
		}
	}
}

// indexDir indexes notes already present in a newly created directory.
func (w *watcher) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(p, storage.NoteExt) {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if w.index(rel) {
			w.emit(NoteCreated, rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(p)
		}
		return nil
	})
}
