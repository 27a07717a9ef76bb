package main_test

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/testutil"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// generatedSite writes a deterministic content tree and returns its parent
// directory, which holds the tree under content/.
func generatedSite(t *testing.T) (string, []conceptnav.Item) {
	t.Helper()
	dir := t.TempDir()
	pages := testutil.GeneratePages(testutil.DefaultGeneratorConfig())
	if err := testutil.WriteSite(filepath.Join(dir, "content"), pages); err != nil {
		t.Fatalf("WriteSite: %v", err)
	}
	return dir, conceptnav.New(nil).Items(pages)
}

func TestE2E_RenderMatchesLibrary(t *testing.T) {
	dir, items := generatedSite(t)

	out, stderr, err := runConceptnav(t, dir, "render")
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, stderr)
	}

	names := regexp.MustCompile(`<span class="concept-name">([^<]*)</span>`).FindAllStringSubmatch(out, -1)
	if len(names) != len(items) {
		t.Fatalf("rendered %d concepts, want %d", len(names), len(items))
	}
	for i, m := range names {
		if m[1] != items[i].Concept.Name {
			t.Errorf("position %d: got %q, want %q", i, m[1], items[i].Concept.Name)
		}
	}
}

func TestE2E_ExportBundle(t *testing.T) {
	dir, items := generatedSite(t)

	out, stderr, err := runConceptnav(t, dir, "export", "--out", "public/static")
	if err != nil {
		t.Fatalf("export failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(out, "Wrote 5 files") {
		t.Errorf("unexpected output: %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "public", "static", "concepts.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Concepts []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"concepts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("concepts.json: %v", err)
	}
	if len(doc.Concepts) != len(items) {
		t.Fatalf("concepts.json has %d entries", len(doc.Concepts))
	}
	for i, c := range doc.Concepts {
		if c.Name != items[i].Concept.Name || c.Count != items[i].Count {
			t.Errorf("entry %d = %+v, want %s (%d)", i, c, items[i].Concept.Name, items[i].Count)
		}
	}
}

func TestE2E_ProjectConfig(t *testing.T) {
	dir, _ := generatedSite(t)
	cfg := "display_class: mobile-only\nexport:\n  sqlite: false\n"
	if err := os.WriteFile(filepath.Join(dir, "conceptnav.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := runConceptnav(t, dir, "render")
	if err != nil {
		t.Fatalf("render failed: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(out, `<nav class="mobile-only concept-nav">`) {
		t.Errorf("display_class not applied: %q", strings.SplitN(out, "\n", 2)[0])
	}
}

func TestE2E_MissingContentFails(t *testing.T) {
	_, stderr, err := runConceptnav(t, t.TempDir(), "render")
	if err == nil {
		t.Fatal("expected non-zero exit without a content directory")
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestE2E_ListUnderTTY(t *testing.T) {
	skipIfNoScript(t)
	dir, items := generatedSite(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := scriptCommand(ctx, conceptnavBinary(t), "list")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+t.TempDir(), "TERM=xterm-256color")
	raw, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("list under script failed: %v\n%s", err, raw)
	}

	out := strings.ReplaceAll(ansiRe.ReplaceAllString(string(raw), ""), "\r", "")
	if !strings.Contains(out, "CONCEPTS") {
		t.Fatalf("missing title in output:\n%s", out)
	}
	if !strings.Contains(out, items[0].Concept.Name) {
		t.Errorf("missing top concept %q in output:\n%s", items[0].Concept.Name, out)
	}
}
