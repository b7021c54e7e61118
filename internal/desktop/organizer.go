// Package desktop sorts folders into category subdirectories, finds files
// and opens them with the platform's default application.
package desktop

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/starford/deskmate/internal/apperr"
)

// OtherCategory receives files whose extension matches no category.
const OtherCategory = "others"

// categories maps a subdirectory name to the extensions filed under it.
var categories = map[string][]string{
	"documents":     {".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt"},
	"images":        {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"},
	"videos":        {".mp4", ".avi", ".mov", ".wmv", ".flv", ".mkv"},
	"audio":         {".mp3", ".wav", ".ogg", ".m4a", ".flac"},
	"archives":      {".zip", ".rar", ".7z", ".tar", ".gz"},
	"code":          {".py", ".js", ".html", ".css", ".java", ".cpp", ".c"},
	"spreadsheets":  {".xls", ".xlsx", ".csv", ".ods"},
	"presentations": {".ppt", ".pptx", ".odp"},
}

var byExt = func() map[string]string {
	m := make(map[string]string)
	for cat, exts := range categories {
		for _, e := range exts {
			m[e] = cat
		}
	}
	return m
}()

// Category returns the subdirectory a file name is filed under.
func Category(name string) string {
	if cat, ok := byExt[strings.ToLower(filepath.Ext(name))]; ok {
		return cat
	}
	return OtherCategory
}

// Organizer implements the file-organizer collaborator.
type Organizer struct {
	logger *slog.Logger
	open   func(path string) error
}

// NewOrganizer creates an Organizer that opens files with the platform opener.
func NewOrganizer(logger *slog.Logger) *Organizer {
	return &Organizer{logger: logger, open: Open}
}

// OrganizeDirectory moves every regular file directly inside dir into its
// category subdirectory and returns how many files went to each category.
// A file that cannot be moved is logged and left in place.
func (o *Organizer) OrganizeDirectory(dir string) (map[string]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("desktop: %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("desktop: read dir: %w", err)
	}

	moved := make(map[string]int)
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		cat := Category(e.Name())
		destDir := filepath.Join(dir, cat)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			o.logger.Error("desktop: create category dir failed", slog.String("dir", destDir), slog.String("error", err.Error()))
			continue
		}
		dest, err := freePath(filepath.Join(destDir, e.Name()))
		if err != nil {
			o.logger.Error("desktop: pick destination failed", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}
		if err := os.Rename(filepath.Join(dir, e.Name()), dest); err != nil {
			o.logger.Error("desktop: move failed", slog.String("file", e.Name()), slog.String("error", err.Error()))
			continue
		}
		moved[cat]++
	}

	o.logger.Info("desktop: organized", slog.String("dir", dir), slog.Int("moved", Total(moved)))
	return moved, nil
}

// freePath returns p, or p with a numeric suffix when p already exists.
func freePath(p string) (string, error) {
	ext := filepath.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	candidate := p
	for i := 1; i < 1000; i++ {
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
	return "", fmt.Errorf("desktop: no free name for %s", p)
}

// Total sums the per-category counts returned by OrganizeDirectory.
func Total(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// FindFiles walks dir and returns files whose base name matches the glob
// pattern, compared case-insensitively. Hidden directories are skipped.
func (o *Organizer) FindFiles(dir, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("desktop: bad pattern %q: %w", pattern, err)
	}
	pattern = strings.ToLower(pattern)

	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == dir {
				return walkErr
			}
			// Unreadable subtrees are common under a home directory.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := filepath.Match(pattern, strings.ToLower(d.Name())); ok {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("desktop: %s: %w", dir, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("desktop: find: %w", err)
	}
	return out, nil
}

// OpenFile opens path with the default application.
func (o *Organizer) OpenFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("desktop: %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("desktop: stat: %w", err)
	}
	if err := o.open(path); err != nil {
		return fmt.Errorf("desktop: open %s: %w", path, err)
	}
	o.logger.Info("desktop: opened", slog.String("path", path))
	return nil
}

// Open launches the platform's default handler for path without waiting
// for it to exit.
func Open(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
