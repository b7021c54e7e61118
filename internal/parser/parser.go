// Package parser reads and writes the YAML frontmatter header of note files.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CreatedLayout is how the created timestamp is written in the header.
const CreatedLayout = "2006-01-02 15:04:05"

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Header is the frontmatter every note is created with.
type Header struct {
	Title   string   `yaml:"title"`
	Type    string   `yaml:"type"`
	Created string   `yaml:"created"`
	Tags    []string `yaml:"tags,omitempty"`
}

// Result holds the output of parsing a note file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Type        string
	Created     time.Time
	Tags        []string
}

// Parse splits data into frontmatter and body and derives the title, type,
// created time and tags. Missing or malformed frontmatter is not an error:
// the whole input becomes the body.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	r := &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
		Type:        stringField(fm, "type"),
		Tags:        extractTags(body, fm),
	}
	if c := stringField(fm, "created"); c != "" {
		if t, err := time.ParseInLocation(CreatedLayout, c, time.Local); err == nil {
			r.Created = t
		}
	}
	return r, nil
}

// Render writes h as YAML frontmatter followed by body.
func Render(h Header, body string) ([]byte, error) {
	head, err := yaml.Marshal(h)
	if err != nil {
		return nil, fmt.Errorf("parser: render header: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, string(data)
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return fm, body
}

func stringField(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	s, _ := fm[key].(string)
	return strings.TrimSpace(s)
}

// extractTags collects the frontmatter "tags" list and inline #tags.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if list, ok := fm["tags"].([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				add(strings.TrimSpace(s))
			}
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle prefers the frontmatter title, then the first H1 heading.
func deriveTitle(fm map[string]interface{}, body string) string {
	if t := stringField(fm, "title"); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
