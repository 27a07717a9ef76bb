// Package testutil provides fixtures and assertions shared by conceptnav tests.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/conceptnav/pkg/concepts"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// GeneratorConfig controls page generation.
type GeneratorConfig struct {
	Seed          int64    // Random seed for determinism
	Pages         int      // Number of pages to generate
	MaxTags       int      // Maximum tags per page
	ExtraTags     []string // Tags outside the concept table mixed in as noise
	UntaggedRatio float64  // Share of pages generated without frontmatter
}

// DefaultGeneratorConfig returns a config suitable for most tests.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:    42,
		Pages:   50,
		MaxTags: 4,
		ExtraTags: []string{
			"ai-systems",
			"ai-systems/knowledge-graphs/rdf",
			"Applied/Neuroscience",
			"journal",
		},
		UntaggedRatio: 0.1,
	}
}

// PageSlug generates the standard slug for the page at index.
func PageSlug(index int) string {
	return fmt.Sprintf("page-%d", index)
}

// GeneratePages builds a deterministic page collection drawing tags from the
// built-in concept table plus cfg.ExtraTags. A page never repeats a tag.
func GeneratePages(cfg GeneratorConfig) []model.Page {
	rng := rand.New(rand.NewSource(cfg.Seed))

	pool := make([]string, 0, concepts.Len()+len(cfg.ExtraTags))
	for _, c := range concepts.Default() {
		pool = append(pool, c.Tag)
	}
	pool = append(pool, cfg.ExtraTags...)

	pages := make([]model.Page, cfg.Pages)
	for i := range pages {
		pages[i] = model.Page{Slug: PageSlug(i)}
		if rng.Float64() < cfg.UntaggedRatio {
			continue
		}
		n := 0
		if cfg.MaxTags > 0 {
			n = rng.Intn(cfg.MaxTags + 1)
		}
		n = min(n, len(pool))
		tags := make([]string, n)
		for j, k := range rng.Perm(len(pool))[:n] {
			tags[j] = pool[k]
		}
		pages[i].Frontmatter = &model.Frontmatter{Title: fmt.Sprintf("Page %d", i), Tags: tags}
	}
	return pages
}

// Markdown renders p as a markdown document. Pages without frontmatter
// become plain markdown.
func Markdown(p model.Page) string {
	if p.Frontmatter == nil {
		return "# " + p.Slug + "\n"
	}
	return MarkdownWithTags(p.Title(), p.Tags()...)
}

// WriteSite writes pages as markdown files under root.
func WriteSite(root string, pages []model.Page) error {
	for _, p := range pages {
		path := filepath.Join(root, filepath.FromSlash(p.Slug)+".md")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(Markdown(p)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", p.Slug, err)
		}
	}
	return nil
}

// WritePages writes pages as markdown files under a fresh temp directory.
func WritePages(t *testing.T, pages []model.Page) string {
	t.Helper()

	root := t.TempDir()
	if err := WriteSite(root, pages); err != nil {
		t.Fatalf("failed to write pages: %v", err)
	}
	return root
}
