package model

import (
	"path"
	"strings"
)

// Concept is a curated sidebar topic: a display name and the tag path it links to.
type Concept struct {
	Name string `json:"name" yaml:"name"`
	Tag  string `json:"tag" yaml:"tag"`
}

// Frontmatter holds the metadata block at the top of a content file.
type Frontmatter struct {
	Title   string         `json:"title,omitempty"`
	Tags    []string       `json:"tags,omitempty"`
	Aliases []string       `json:"aliases,omitempty"`
	Draft   bool           `json:"draft,omitempty"`
	Extra   map[string]any `json:"-"`
}

// Page is a single content file as seen by the build pipeline.
type Page struct {
	Slug        string       `json:"slug"`
	FilePath    string       `json:"file_path,omitempty"`
	Frontmatter *Frontmatter `json:"frontmatter,omitempty"`
}

// Tags returns the page's tag list. Pages without frontmatter have no tags.
func (p Page) Tags() []string {
	if p.Frontmatter == nil {
		return nil
	}
	return p.Frontmatter.Tags
}

// HasTag reports whether the page carries exactly the given tag.
func (p Page) HasTag(tag string) bool {
	for _, t := range p.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// Title returns the frontmatter title, falling back to the last slug segment.
func (p Page) Title() string {
	if p.Frontmatter != nil && strings.TrimSpace(p.Frontmatter.Title) != "" {
		return p.Frontmatter.Title
	}
	return path.Base(p.Slug)
}

// IsDraft returns true if the page is marked as a draft.
func (p Page) IsDraft() bool {
	return p.Frontmatter != nil && p.Frontmatter.Draft
}
