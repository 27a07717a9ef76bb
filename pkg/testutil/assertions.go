package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// Page builds a page with the given tags. A nil tags slice produces a page
// without frontmatter.
func Page(slug string, tags ...string) model.Page {
	if tags == nil {
		return model.Page{Slug: slug}
	}
	return model.Page{Slug: slug, Frontmatter: &model.Frontmatter{Tags: tags}}
}

// PagesWithTags builds one page per tag set, with slugs page-0, page-1, ...
func PagesWithTags(tagSets ...[]string) []model.Page {
	pages := make([]model.Page, len(tagSets))
	for i, tags := range tagSets {
		pages[i] = model.Page{
			Slug:        PageSlug(i),
			Frontmatter: &model.Frontmatter{Tags: tags},
		}
	}
	return pages
}

// CountTagOccurrences counts how often tag appears across pages, including
// repeats within one page. Used to cross-check CountTags.
func CountTagOccurrences(pages []model.Page, tag string) int {
	n := 0
	for _, p := range pages {
		for _, t := range p.Tags() {
			if t == tag {
				n++
			}
		}
	}
	return n
}

// ConceptNames returns the names of concepts in order.
func ConceptNames(list []model.Concept) []string {
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.Name
	}
	return names
}

// AssertNames verifies an ordered list of names.
func AssertNames(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d names, got %d:\n  got:  %v\n  want: %v", len(want), len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q\n  got:  %v\n  want: %v", i, want[i], got[i], got, want)
			return
		}
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	// Editors like to add a trailing newline to golden files.
	want := strings.TrimRight(string(expected), "\n")
	got := strings.TrimRight(actual, "\n")
	if want == got {
		return
	}

	expectedLines := strings.Split(want, "\n")
	actualLines := strings.Split(got, "\n")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}
		if expLine != actLine {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
			return
		}
	}
}

// Content tree helpers

// WriteContentTree writes files (relative path -> content) under a fresh temp
// directory and returns its path.
func WriteContentTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content)
	}
	return root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MarkdownWithTags returns a markdown document with YAML frontmatter listing tags.
func MarkdownWithTags(title string, tags ...string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("title: \"" + title + "\"\n")
	if len(tags) > 0 {
		sb.WriteString("tags:\n")
		for _, tag := range tags {
			sb.WriteString("  - " + tag + "\n")
		}
	}
	sb.WriteString("---\n\n# " + title + "\n")
	return sb.String()
}
