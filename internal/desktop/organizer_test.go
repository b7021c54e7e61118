package desktop

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/starford/deskmate/internal/apperr"
)

func testOrganizer(t *testing.T) (*Organizer, *[]string) {
	t.Helper()
	var opened []string
	o := NewOrganizer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.open = func(p string) error {
		opened = append(opened, p)
		return nil
	}
	return o, &opened
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("test content"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCategory(t *testing.T) {
	cases := map[string]string{
		"report.PDF":  "documents",
		"photo.jpeg":  "images",
		"clip.mkv":    "videos",
		"song.flac":   "audio",
		"backup.7z":   "archives",
		"main.py":     "code",
		"budget.xlsx": "spreadsheets",
		"deck.pptx":   "presentations",
		"mystery.bin": OtherCategory,
		"Makefile":    OtherCategory,
	}
	for name, want := range cases {
		if got := Category(name); got != want {
			t.Errorf("Category(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestOrganizeDirectory(t *testing.T) {
	o, _ := testOrganizer(t)
	dir := t.TempDir()
	for _, f := range []string{"test1.pdf", "test2.jpg", "test3.mp4", "test4.py", "test5.zip", "notes.txt", "blob.bin", ".hidden"} {
		touch(t, filepath.Join(dir, f))
	}
	touch(t, filepath.Join(dir, "sub", "inner.pdf"))

	moved, err := o.OrganizeDirectory(dir)
	if err != nil {
		t.Fatalf("OrganizeDirectory: %v", err)
	}
	want := map[string]int{"documents": 2, "images": 1, "videos": 1, "code": 1, "archives": 1, OtherCategory: 1}
	for cat, n := range want {
		if moved[cat] != n {
			t.Errorf("moved[%s] = %d, want %d", cat, moved[cat], n)
		}
	}
	if Total(moved) != 7 {
		t.Errorf("total = %d, want 7", Total(moved))
	}
	if _, err := os.Stat(filepath.Join(dir, "documents", "test1.pdf")); err != nil {
		t.Errorf("pdf not moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".hidden")); err != nil {
		t.Error("hidden files should be left alone")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub", "inner.pdf")); err != nil {
		t.Error("files in subdirectories should be left alone")
	}
}

func TestOrganizeDirectory_NameCollision(t *testing.T) {
	o, _ := testOrganizer(t)
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "documents", "cv.pdf"))
	touch(t, filepath.Join(dir, "cv.pdf"))

	if _, err := o.OrganizeDirectory(dir); err != nil {
		t.Fatalf("OrganizeDirectory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "documents", "cv (1).pdf")); err != nil {
		t.Errorf("colliding file should get a suffix: %v", err)
	}
}

func TestOrganizeDirectory_Missing(t *testing.T) {
	o, _ := testOrganizer(t)
	_, err := o.OrganizeDirectory(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindFiles(t *testing.T) {
	o, _ := testOrganizer(t)
	root := t.TempDir()
	touch(t, filepath.Join(root, "Tax Return 2025.PDF"))
	touch(t, filepath.Join(root, "docs", "tax-notes.pdf"))
	touch(t, filepath.Join(root, "docs", "tax.txt"))
	touch(t, filepath.Join(root, ".cache", "tax.pdf"))

	got, err := o.FindFiles(root, "*tax*.pdf")
	if err != nil {
		t.Fatalf("FindFiles: %v", err)
	}
	sort.Strings(got)
	want := []string{
		filepath.Join(root, "Tax Return 2025.PDF"),
		filepath.Join(root, "docs", "tax-notes.pdf"),
	}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindFiles_BadPattern(t *testing.T) {
	o, _ := testOrganizer(t)
	if _, err := o.FindFiles(t.TempDir(), "[unclosed"); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestOpenFile(t *testing.T) {
	o, opened := testOrganizer(t)
	path := filepath.Join(t.TempDir(), "a.pdf")
	touch(t, path)

	if err := o.OpenFile(path); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if len(*opened) != 1 || (*opened)[0] != path {
		t.Errorf("opened = %v", *opened)
	}
	if err := o.OpenFile(path + ".missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
