package export

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/testutil"
)

func openIndex(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWriteTagIndex(t *testing.T) {
	pages := testutil.PagesWithTags(
		[]string{"ai-systems/knowledge-graphs"},
		[]string{"ai-systems/knowledge-graphs", "applied/neuroscience"},
		nil,
		[]string{"misc", "misc"},
	)
	items := conceptnav.New(nil).Items(pages)

	path := filepath.Join(t.TempDir(), TagIndexFile)
	if err := WriteTagIndex(path, pages, items); err != nil {
		t.Fatalf("WriteTagIndex: %v", err)
	}
	db := openIndex(t, path)

	var pageCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&pageCount); err != nil {
		t.Fatal(err)
	}
	if pageCount != 4 {
		t.Errorf("pages = %d, want 4", pageCount)
	}

	counts := map[string]int{}
	rows, err := db.Query(`SELECT tag, count FROM tag_counts`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			t.Fatal(err)
		}
		counts[tag] = n
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	want := conceptnav.CountTags(pages)
	for tag, n := range want {
		if counts[tag] != n {
			t.Errorf("tag_counts[%q] = %d, want %d", tag, counts[tag], n)
		}
	}

	var name string
	var count int
	if err := db.QueryRow(`SELECT name, count FROM concepts ORDER BY position LIMIT 1`).Scan(&name, &count); err != nil {
		t.Fatal(err)
	}
	if name != "Knowledge Graphs" || count != 2 {
		t.Errorf("first concept = %s (%d)", name, count)
	}

	var version string
	if err := db.QueryRow(`SELECT value FROM export_meta WHERE key = 'version'`).Scan(&version); err != nil {
		t.Fatalf("meta version: %v", err)
	}
	if version == "" {
		t.Error("empty version in export_meta")
	}
}

func TestWriteTagIndex_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), TagIndexFile)
	first := testutil.PagesWithTags([]string{"a"}, []string{"b"}, []string{"c"})
	if err := WriteTagIndex(path, first, nil); err != nil {
		t.Fatal(err)
	}
	second := testutil.PagesWithTags([]string{"a"})
	if err := WriteTagIndex(path, second, nil); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := openIndex(t, path).QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("pages = %d after rewrite, want 1", n)
	}
}

func TestWriteBundle_SQLite(t *testing.T) {
	dir := t.TempDir()
	b := scenarioBundle()
	b.IncludeSQLite = true
	m, err := WriteBundle(dir, b)
	if err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	if !slices.Contains(m.Files, TagIndexFile) {
		t.Fatalf("Files = %v, missing %s", m.Files, TagIndexFile)
	}

	var n int
	if err := openIndex(t, filepath.Join(dir, TagIndexFile)).QueryRow(`SELECT COUNT(*) FROM concepts`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("concepts = %d, want 10", n)
	}
}
