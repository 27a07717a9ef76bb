package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vanderheijden86/conceptnav/pkg/model"
	"github.com/vanderheijden86/conceptnav/pkg/testutil"
)

func collectWarnings() (func(string), func() []string) {
	var (
		mu   sync.Mutex
		msgs []string
	)
	return func(msg string) {
			mu.Lock()
			defer mu.Unlock()
			msgs = append(msgs, msg)
		}, func() []string {
			mu.Lock()
			defer mu.Unlock()
			return append([]string(nil), msgs...)
		}
}

func slugs(pages []model.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Slug
	}
	return out
}

func TestLoadPages(t *testing.T) {
	root := testutil.WriteContentTree(t, map[string]string{
		"index.md":                      testutil.MarkdownWithTags("Home"),
		"graphs/kg.md":                  testutil.MarkdownWithTags("KG", "ai-systems/knowledge-graphs"),
		"graphs/memory.MD":              testutil.MarkdownWithTags("Memory", "ai-systems/memory-systems"),
		"notes/plain.md":                "# no frontmatter\n",
		"notes/broken.md":               "---\ntags: [unterminated\n---\n",
		"notes/draft.md":                "---\ndraft: true\ntags: [applied/therapeutics]\n---\n",
		"notes/image.png":               "not markdown",
		"private/secret.md":             testutil.MarkdownWithTags("Secret", "applied/neuroscience"),
		"templates/daily.md":            testutil.MarkdownWithTags("Daily", "applied/neuroscience"),
		".obsidian/workspace.md":        "ignored",
		".git/notes.md":                 "ignored",
		"deep/er/still/neuroscience.md": testutil.MarkdownWithTags("N", "applied/neuroscience"),
	})

	warn, warnings := collectWarnings()
	pages, err := LoadPages(context.Background(), root, Options{
		IgnorePatterns: DefaultIgnorePatterns(),
		WarningHandler: warn,
	})
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}

	testutil.AssertNames(t, slugs(pages), []string{
		"deep/er/still/neuroscience",
		"graphs/kg",
		"graphs/memory",
		"index",
		"notes/broken",
		"notes/plain",
	})

	bySlug := make(map[string]model.Page)
	for _, p := range pages {
		bySlug[p.Slug] = p
	}
	if !bySlug["graphs/kg"].HasTag("ai-systems/knowledge-graphs") {
		t.Error("graphs/kg lost its tag")
	}
	if bySlug["notes/plain"].Frontmatter != nil {
		t.Error("plain page should have no frontmatter")
	}
	if bySlug["notes/broken"].Frontmatter != nil {
		t.Error("broken frontmatter should degrade to none")
	}
	if got := bySlug["index"].FilePath; got != filepath.Join(root, "index.md") {
		t.Errorf("unexpected file path %q", got)
	}

	w := warnings()
	if len(w) != 1 || !strings.Contains(w[0], "notes/broken.md") && !strings.Contains(w[0], filepath.Join("notes", "broken.md")) {
		t.Errorf("expected one warning about notes/broken.md, got %v", w)
	}
}

func TestLoadPages_IncludeDrafts(t *testing.T) {
	root := testutil.WriteContentTree(t, map[string]string{
		"draft.md": "---\ndraft: true\n---\n",
		"final.md": "# final\n",
	})

	pages, err := LoadPages(context.Background(), root, Options{IncludeDrafts: true})
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	testutil.AssertNames(t, slugs(pages), []string{"draft", "final"})
}

func TestLoadPages_RepeatedTagCountsOnce(t *testing.T) {
	root := testutil.WriteContentTree(t, map[string]string{
		"twice.md": "---\ntags: [applied/neuroscience, applied/neuroscience]\n---\n",
		"once.md":  testutil.MarkdownWithTags("Once", "applied/neuroscience"),
	})
	pages, err := LoadPages(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if got := testutil.CountTagOccurrences(pages, "applied/neuroscience"); got != 2 {
		t.Errorf("applied/neuroscience occurs %d times across 2 pages, want 2", got)
	}
	for _, p := range pages {
		if len(p.Tags()) != 1 {
			t.Errorf("%s: tags = %v, want one entry", p.Slug, p.Tags())
		}
	}
}

func TestLoadPages_MatchesGeneratedPages(t *testing.T) {
	cfg := testutil.DefaultGeneratorConfig()
	cfg.Pages = 120
	want := testutil.GeneratePages(cfg)
	root := testutil.WritePages(t, want)

	pages, err := LoadPages(context.Background(), root, Options{Concurrency: 4})
	if err != nil {
		t.Fatalf("LoadPages: %v", err)
	}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %d", len(want), len(pages))
	}
	for _, tag := range []string{"ai-systems/knowledge-graphs", "applied/neuroscience", "journal"} {
		if got, exp := testutil.CountTagOccurrences(pages, tag), testutil.CountTagOccurrences(want, tag); got != exp {
			t.Errorf("tag %s: loaded %d pages, generated %d", tag, got, exp)
		}
	}
}

func TestLoadPages_Errors(t *testing.T) {
	if _, err := LoadPages(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "page.md")
	testutil.WriteFile(t, file, "# x\n")
	if _, err := LoadPages(context.Background(), file, Options{}); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}
}

func TestLoadPages_Cancelled(t *testing.T) {
	root := testutil.WriteContentTree(t, map[string]string{"a.md": "# a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := LoadPages(ctx, root, Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIgnored(t *testing.T) {
	patterns := []string{"private", "*.excalidraw.md", "drafts/wip-*"}
	tests := map[string]bool{
		"private/a.md":               true,
		"notes/private/a.md":         true,
		"notes/sketch.excalidraw.md": true,
		"drafts/wip-1.md":            true,
		"drafts/final.md":            false,
		"privateer.md":               false,
		"notes/a.md":                 false,
	}
	for rel, want := range tests {
		if got := Ignored(filepath.FromSlash(rel), patterns); got != want {
			t.Errorf("Ignored(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestSlugFor(t *testing.T) {
	if got := SlugFor(filepath.Join("a", "b", "c.md")); got != "a/b/c" {
		t.Errorf("unexpected slug %q", got)
	}
}
