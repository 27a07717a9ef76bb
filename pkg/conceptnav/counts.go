// Package conceptnav renders the "Concepts" sidebar: a fixed list of curated
// topics, ordered by how many pages carry each topic's tag.
//
// Rendering is a pure function of the page collection and the concept table.
// Every call builds and discards its own tag counts, so a Renderer can be shared
// by concurrent build workers without locking.
package conceptnav

import (
	"slices"

	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// TagPrefix is the relative path prefix every concept link starts with.
const TagPrefix = "./tags/"

// TagCounts maps a tag string to the number of pages carrying it.
type TagCounts map[string]int

// Get returns the count for tag, or 0 if no page carries it.
func (c TagCounts) Get(tag string) int {
	return c[tag]
}

// CountTags counts every tag occurrence across pages. Tags match exactly;
// a child tag does not count toward its parent.
func CountTags(pages []model.Page) TagCounts {
	defer metrics.Timer(metrics.TagCount)()

	counts := make(TagCounts)
	for _, p := range pages {
		for _, tag := range p.Tags() {
			counts[tag]++
		}
	}
	return counts
}

// Item is a concept paired with its resolved page count.
type Item struct {
	Concept model.Concept `json:"concept"`
	Count   int           `json:"count"`
}

// Href returns the link target for the concept's tag page.
func (i Item) Href() string {
	return TagPrefix + i.Concept.Tag
}

// HasBadge reports whether the count badge is shown.
func (i Item) HasBadge() bool {
	return i.Count > 0
}

// Sort resolves counts for concepts and orders them by descending count.
// The sort is stable: concepts with equal counts keep their declared order.
// The input slice is not modified.
func Sort(concepts []model.Concept, counts TagCounts) []Item {
	items := make([]Item, len(concepts))
	for i, c := range concepts {
		items[i] = Item{Concept: c, Count: counts.Get(c.Tag)}
	}
	slices.SortStableFunc(items, func(a, b Item) int {
		return b.Count - a.Count
	})
	return items
}
