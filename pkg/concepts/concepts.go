// Package concepts holds the curated concept table shown in the sidebar.
//
// The table is fixed at compile time. Callers always receive a copy, so the
// declared order is stable for the lifetime of the process.
package concepts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// ErrEmptyTable is returned by Validate for a table with no entries.
var ErrEmptyTable = errors.New("concept table is empty")

var table = [...]model.Concept{
	// ai-systems
	{Name: "Knowledge Graphs", Tag: "ai-systems/knowledge-graphs"},
	{Name: "Memory Systems", Tag: "ai-systems/memory-systems"},
	{Name: "Small Models", Tag: "ai-systems/small-models"},
	{Name: "Cognitive Architecture", Tag: "ai-systems/cognitive-architecture"},
	// human-ai-interaction
	{Name: "Psyche Interfaces", Tag: "human-ai-interaction/psyche-interfaces"},
	{Name: "AI Experience Design", Tag: "human-ai-interaction/ai-experience-design"},
	{Name: "Bidirectional Context", Tag: "human-ai-interaction/bidirectional-context"},
	// applied
	{Name: "Neuroscience", Tag: "applied/neuroscience"},
	{Name: "AI-Native Development", Tag: "applied/ai-native-development"},
	{Name: "Therapeutics", Tag: "applied/therapeutics"},
}

// Default returns a copy of the built-in concept table in declared order.
func Default() []model.Concept {
	out := make([]model.Concept, len(table))
	copy(out, table[:])
	return out
}

// Len returns the number of built-in concepts.
func Len() int {
	return len(table)
}

// Validate checks a concept table supplied from configuration.
// Every entry needs a name and a tag, and tags must be unique. Tags are
// limited to ASCII letters, digits and "-_.~/" so that a link is always the
// literal "./tags/" + tag. It does not check that the tags are used by any
// page.
func Validate(list []model.Concept) error {
	if len(list) == 0 {
		return ErrEmptyTable
	}
	seen := make(map[string]int, len(list))
	for i, c := range list {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("concept %d: name cannot be empty", i+1)
		}
		if strings.TrimSpace(c.Tag) == "" {
			return fmt.Errorf("concept %d (%s): tag cannot be empty", i+1, c.Name)
		}
		if r, ok := invalidTagRune(c.Tag); ok {
			return fmt.Errorf("concept %d (%s): tag %q contains %q; use letters, digits and -_.~/", i+1, c.Name, c.Tag, r)
		}
		if prev, ok := seen[c.Tag]; ok {
			return fmt.Errorf("concept %d (%s): duplicate tag %q (also used by concept %d)", i+1, c.Name, c.Tag, prev)
		}
		seen[c.Tag] = i + 1
	}
	return nil
}

func invalidTagRune(tag string) (rune, bool) {
	for _, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_.~/", r):
		default:
			return r, true
		}
	}
	return 0, false
}
