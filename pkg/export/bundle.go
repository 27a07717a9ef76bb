// Package export writes the concept navigation as a static bundle and serves
// it locally for previewing.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/conceptnav/pkg/conceptnav"
	"github.com/vanderheijden86/conceptnav/pkg/debug"
	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
	"github.com/vanderheijden86/conceptnav/pkg/version"
)

// File names inside a bundle.
const (
	NavFile        = "concept-nav.html"
	StylesheetFile = "concept-nav.css"
	ConceptsFile   = "concepts.json"
	IndexFile      = "index.html"
)

//go:embed assets/index.html.tmpl
var indexTemplateSource string

var indexTmpl = template.Must(template.New("index").Parse(indexTemplateSource))

// Bundle is the input to WriteBundle.
type Bundle struct {
	Pages []model.Page
	Nav   conceptnav.Result

	// Title is used for the preview page. Defaults to conceptnav.Title.
	Title string

	IncludeJSON   bool
	IncludeSQLite bool
}

// Manifest describes a written bundle.
type Manifest struct {
	Dir         string    `json:"dir"`
	Files       []string  `json:"files"`
	PageCount   int       `json:"page_count"`
	Concepts    int       `json:"concepts"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ConceptsDocument is the structure written to concepts.json.
type ConceptsDocument struct {
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	PageCount   int            `json:"page_count"`
	Concepts    []ConceptEntry `json:"concepts"`
}

// ConceptEntry is one sidebar entry in render order.
type ConceptEntry struct {
	Name  string `json:"name"`
	Tag   string `json:"tag"`
	Href  string `json:"href"`
	Count int    `json:"count"`
}

// NewConceptsDocument builds the JSON document for the given items.
func NewConceptsDocument(items []conceptnav.Item, pageCount int, at time.Time) ConceptsDocument {
	doc := ConceptsDocument{
		Version:     version.Version,
		GeneratedAt: at,
		PageCount:   pageCount,
		Concepts:    make([]ConceptEntry, 0, len(items)),
	}
	for _, item := range items {
		doc.Concepts = append(doc.Concepts, ConceptEntry{
			Name:  item.Concept.Name,
			Tag:   item.Concept.Tag,
			Href:  item.Href(),
			Count: item.Count,
		})
	}
	return doc
}

// WriteBundle writes the nav fragment, stylesheet, preview page and the
// optional JSON and SQLite artifacts into outDir.
func WriteBundle(outDir string, b Bundle) (Manifest, error) {
	defer metrics.Timer(metrics.BundleExport)()

	now := time.Now().UTC()
	m := Manifest{
		Dir:         outDir,
		PageCount:   len(b.Pages),
		Concepts:    len(b.Nav.Items),
		GeneratedAt: now,
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return m, fmt.Errorf("create output dir: %w", err)
	}

	write := func(name string, data []byte) error {
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		m.Files = append(m.Files, name)
		return nil
	}

	if err := write(NavFile, []byte(string(b.Nav.HTML)+"\n")); err != nil {
		return m, err
	}
	if err := write(StylesheetFile, []byte(conceptnav.Stylesheet())); err != nil {
		return m, err
	}

	if b.IncludeJSON {
		data, err := json.MarshalIndent(NewConceptsDocument(b.Nav.Items, len(b.Pages), now), "", "  ")
		if err != nil {
			return m, fmt.Errorf("marshal concepts: %w", err)
		}
		if err := write(ConceptsFile, append(data, '\n')); err != nil {
			return m, err
		}
	}

	if b.IncludeSQLite {
		if err := WriteTagIndex(filepath.Join(outDir, TagIndexFile), b.Pages, b.Nav.Items); err != nil {
			return m, fmt.Errorf("write tag index: %w", err)
		}
		m.Files = append(m.Files, TagIndexFile)
	}

	index, err := renderIndex(b, now)
	if err != nil {
		return m, err
	}
	if err := write(IndexFile, index); err != nil {
		return m, err
	}

	debug.Log("bundle written to %s: %v", outDir, m.Files)
	return m, nil
}

func renderIndex(b Bundle, at time.Time) ([]byte, error) {
	title := b.Title
	if title == "" {
		title = conceptnav.Title
	}
	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, struct {
		Title       string
		Version     string
		Stylesheet  string
		Nav         template.HTML
		PageCount   int
		GeneratedAt string
	}{
		Title:       title,
		Version:     version.Version,
		Stylesheet:  StylesheetFile,
		Nav:         b.Nav.HTML,
		PageCount:   len(b.Pages),
		GeneratedAt: at.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return buf.Bytes(), nil
}
