package parser

import (
	"strings"
	"testing"
	"time"
)

func TestParse_NoteHeader(t *testing.T) {
	input := []byte("---\ntitle: Exam prep\ntype: lectures\ncreated: \"2026-10-18 09:30:00\"\ntags:\n  - cs101\n---\n\nRead chapter 4. #exam\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Exam prep" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Type != "lectures" {
		t.Errorf("type = %q", r.Type)
	}
	want := time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)
	if !r.Created.Equal(want) {
		t.Errorf("created = %v, want %v", r.Created, want)
	}
	if len(r.Tags) != 2 || r.Tags[0] != "cs101" || r.Tags[1] != "exam" {
		t.Errorf("tags = %v", r.Tags)
	}
	if r.Body != "Read chapter 4. #exam\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q", r.Title)
	}
	if !r.Created.IsZero() {
		t.Errorf("created = %v, want zero", r.Created)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	r, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Error("expected nil frontmatter on invalid YAML")
	}
	if r.Body != input {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_UnclosedFrontmatter(t *testing.T) {
	r, _ := Parse([]byte("---\ntitle: x\nno closing\n"))
	if r.Frontmatter != nil || r.Title != "" {
		t.Errorf("unclosed frontmatter should be body, got %+v", r)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	h := Header{Title: "Groceries: weekly", Type: "misc", Created: "2026-10-18 17:05:00"}
	data, err := Render(h, "milk and eggs")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") || !strings.HasSuffix(string(data), "milk and eggs\n") {
		t.Errorf("rendered = %q", data)
	}

	r, _ := Parse(data)
	if r.Title != h.Title || r.Type != h.Type {
		t.Errorf("parsed header = %q/%q", r.Title, r.Type)
	}
	if r.Created.Format(CreatedLayout) != h.Created {
		t.Errorf("created = %v", r.Created)
	}
	if r.Body != "milk and eggs\n" {
		t.Errorf("body = %q", r.Body)
	}
}
