package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\ntitle: Groceries\n---\nmilk\n")
	if err := s.Write("miscellaneous/groceries.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("miscellaneous/groceries.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestExists(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("projects/robot.md", []byte("arm"))

	ok, err := s.Exists("projects/robot.md")
	if err != nil || !ok {
		t.Fatalf("Exists(file) = %v, %v", ok, err)
	}
	ok, err = s.Exists("projects/missing.md")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	ok, err = s.Exists("projects")
	if err != nil || ok {
		t.Errorf("Exists(dir) = %v, %v", ok, err)
	}
	if _, err := s.Exists("../escape.md"); err == nil {
		t.Error("expected error for path outside the vault")
	}
}

func TestMkdirAll(t *testing.T) {
	s := tempVault(t)
	if err := s.MkdirAll("lecture_notes"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	info, err := os.Stat(filepath.Join(s.Root(), "lecture_notes"))
	if err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
	if err := s.MkdirAll("../outside"); err == nil {
		t.Error("expected error for dir outside the vault")
	}
}

func TestList_SkipsHiddenDirs(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("misc.md", []byte("visible"))
	_ = s.Write(".trash/old.md", []byte("hidden"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != "misc.md" {
		t.Errorf("items = %+v", items)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("projects/a.md", []byte("a"))
	_ = s.Write("lecture_notes/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not a note"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}

	items, err = s.List("projects")
	if err != nil {
		t.Fatalf("List(projects): %v", err)
	}
	if len(items) != 1 || items[0].Path != "projects/a.md" {
		t.Errorf("items = %+v", items)
	}
	if items[0].Checksum != Checksum([]byte("a")) {
		t.Errorf("checksum = %q", items[0].Checksum)
	}
}

func TestList_MissingDir(t *testing.T) {
	s := tempVault(t)
	items, err := s.List("assignments")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestWriteFileAtomic_NoLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "reminders.json")
	if err := WriteFileAtomic(path, []byte("[]")); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte(`[{"task":"x"}]`)); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != `[{"task":"x"}]` {
		t.Errorf("content = %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "nested", ".deskmate-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "deskmate-test-*")
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
