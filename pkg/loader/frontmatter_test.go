package loader

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFrontmatter_YAML(t *testing.T) {
	data := []byte(`---
title: Graph Memory
tags:
  - ai-systems/knowledge-graphs
  - " applied/neuroscience "
  - ""
aliases: gm, graph-memory
draft: "true"
cssclasses: [wide]
---

# Graph Memory
`)

	fm, err := ParseFrontmatter(data)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if fm.Title != "Graph Memory" {
		t.Errorf("unexpected title %q", fm.Title)
	}
	if want := []string{"ai-systems/knowledge-graphs", "applied/neuroscience"}; !reflect.DeepEqual(fm.Tags, want) {
		t.Errorf("tags = %v, want %v", fm.Tags, want)
	}
	if want := []string{"gm", "graph-memory"}; !reflect.DeepEqual(fm.Aliases, want) {
		t.Errorf("aliases = %v, want %v", fm.Aliases, want)
	}
	if !fm.Draft {
		t.Error(`draft: "true" should mark the page as a draft`)
	}
	if _, ok := fm.Extra["cssclasses"]; !ok {
		t.Errorf("expected unknown keys in Extra, got %v", fm.Extra)
	}
	if _, ok := fm.Extra["tags"]; ok {
		t.Error("tags should not be duplicated into Extra")
	}
}

func TestParseFrontmatter_TOML(t *testing.T) {
	data := []byte("+++\r\ntitle = \"Small Models\"\r\ntag = [\"ai-systems/small-models\", 42]\r\ndraft = false\r\n+++\r\nbody\r\n")

	fm, err := ParseFrontmatter(data)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if fm.Title != "Small Models" {
		t.Errorf("unexpected title %q", fm.Title)
	}
	if want := []string{"ai-systems/small-models", "42"}; !reflect.DeepEqual(fm.Tags, want) {
		t.Errorf("tags = %v, want %v", fm.Tags, want)
	}
	if fm.Draft {
		t.Error("draft = false should not mark the page as a draft")
	}
}

func TestParseFrontmatter_TagCoercion(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"comma string", "tags: applied/neuroscience, applied/therapeutics", []string{"applied/neuroscience", "applied/therapeutics"}},
		{"alias key", "tag: applied/therapeutics", []string{"applied/therapeutics"}},
		{"tags wins over tag", "tags: [a]\ntag: [b]", []string{"a"}},
		{"numbers kept", "tags: [2024, 1.5]", []string{"2024", "1.5"}},
		{"non-scalars dropped", "tags: [a, {b: c}, [d], true]", []string{"a"}},
		{"case preserved", "tags: [Applied/Neuroscience]", []string{"Applied/Neuroscience"}},
		{"null", "tags:", nil},
		{"mapping ignored", "tags: {a: b}", nil},
		{"empty string", `tags: ""`, nil},
		{"repeats dropped", "tags: [applied/neuroscience, b, applied/neuroscience]", []string{"applied/neuroscience", "b"}},
		{"repeats after trim", "tags: a, b , a", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, err := ParseFrontmatter([]byte("---\n" + tt.doc + "\n---\n"))
			if err != nil {
				t.Fatalf("ParseFrontmatter: %v", err)
			}
			if !reflect.DeepEqual(fm.Tags, tt.want) {
				t.Errorf("tags = %#v, want %#v", fm.Tags, tt.want)
			}
		})
	}
}

func TestParseFrontmatter_NoFrontmatter(t *testing.T) {
	for _, doc := range []string{"", "# Title\n", "text\n---\ntags: [a]\n---\n"} {
		fm, err := ParseFrontmatter([]byte(doc))
		if err != nil || fm != nil {
			t.Errorf("%q: expected nil, nil; got %v, %v", doc, fm, err)
		}
	}
}

func TestParseFrontmatter_EmptyBlock(t *testing.T) {
	fm, err := ParseFrontmatter([]byte("---\n---\nbody"))
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if fm == nil || len(fm.Tags) != 0 {
		t.Errorf("expected empty frontmatter, got %+v", fm)
	}
}

func TestParseFrontmatter_LeadingBlankLines(t *testing.T) {
	fm, err := ParseFrontmatter([]byte("\n  \n---\ntags: [a]\n---\n"))
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if fm == nil || len(fm.Tags) != 1 || fm.Tags[0] != "a" {
		t.Errorf("unexpected frontmatter %+v", fm)
	}
}

func TestParseFrontmatter_BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("---\ntags: [a]\n---\n")...)
	fm, err := ParseFrontmatter(data)
	if err != nil {
		t.Fatalf("ParseFrontmatter: %v", err)
	}
	if len(fm.Tags) != 1 || fm.Tags[0] != "a" {
		t.Errorf("unexpected tags %v", fm.Tags)
	}
}

func TestParseFrontmatter_Errors(t *testing.T) {
	if _, err := ParseFrontmatter([]byte("---\ntags: [a]\n")); !errors.Is(err, ErrUnterminatedFrontmatter) {
		t.Errorf("expected ErrUnterminatedFrontmatter, got %v", err)
	}
	if _, err := ParseFrontmatter([]byte("\n+++")); !errors.Is(err, ErrUnterminatedFrontmatter) {
		t.Errorf("bare fence: expected ErrUnterminatedFrontmatter, got %v", err)
	}
	if _, err := ParseFrontmatter([]byte("---\ntags: [a\n---\n")); err == nil {
		t.Error("expected yaml error")
	}
	if _, err := ParseFrontmatter([]byte("+++\ntags = [\n+++\n")); err == nil {
		t.Error("expected toml error")
	}
}
