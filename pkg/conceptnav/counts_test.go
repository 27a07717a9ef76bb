package conceptnav

import (
	"testing"

	"github.com/vanderheijden86/conceptnav/pkg/concepts"
	"github.com/vanderheijden86/conceptnav/pkg/model"
	"github.com/vanderheijden86/conceptnav/pkg/testutil"
)

func TestCountTags(t *testing.T) {
	pages := []model.Page{
		testutil.Page("a", "ai-systems/knowledge-graphs"),
		testutil.Page("b", "ai-systems/knowledge-graphs", "applied/neuroscience"),
		testutil.Page("c"),
		{Slug: "d", Frontmatter: &model.Frontmatter{}},
		testutil.Page("e", "ai-systems/knowledge-graphs/rdf", "Applied/Neuroscience"),
	}

	counts := CountTags(pages)

	want := map[string]int{
		"ai-systems/knowledge-graphs":     2,
		"applied/neuroscience":            1,
		"ai-systems/knowledge-graphs/rdf": 1,
		"Applied/Neuroscience":            1,
	}
	if len(counts) != len(want) {
		t.Errorf("expected %d distinct tags, got %d: %v", len(want), len(counts), counts)
	}
	for tag, n := range want {
		if got := counts.Get(tag); got != n {
			t.Errorf("count[%q] = %d, want %d", tag, got, n)
		}
	}
	if got := counts.Get("applied/therapeutics"); got != 0 {
		t.Errorf("absent tag should count 0, got %d", got)
	}
}

func TestCountTags_RepeatedTagOnOnePage(t *testing.T) {
	pages := []model.Page{testutil.Page("a", "applied/neuroscience", "applied/neuroscience")}
	if got := CountTags(pages).Get("applied/neuroscience"); got != 2 {
		t.Errorf("each occurrence counts once, expected 2, got %d", got)
	}
}

func TestCountTags_NilAndEmpty(t *testing.T) {
	if got := CountTags(nil); len(got) != 0 {
		t.Errorf("expected empty counts for nil pages, got %v", got)
	}
	var nilCounts TagCounts
	if got := nilCounts.Get("x"); got != 0 {
		t.Errorf("nil TagCounts should resolve to 0, got %d", got)
	}
}

func TestSort_StableDescending(t *testing.T) {
	counts := TagCounts{
		"applied/therapeutics":    3,
		"ai-systems/small-models": 3,
		"applied/neuroscience":    1,
	}

	items := Sort(concepts.Default(), counts)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Concept.Name
	}
	testutil.AssertNames(t, names, []string{
		"Small Models",
		"Therapeutics",
		"Neuroscience",
		"Knowledge Graphs",
		"Memory Systems",
		"Cognitive Architecture",
		"Psyche Interfaces",
		"AI Experience Design",
		"Bidirectional Context",
		"AI-Native Development",
	})
}

func TestSort_DoesNotModifyInput(t *testing.T) {
	list := concepts.Default()
	_ = Sort(list, TagCounts{"applied/therapeutics": 5})

	testutil.AssertNames(t, testutil.ConceptNames(list), testutil.ConceptNames(concepts.Default()))
}

func TestItem_HrefAndBadge(t *testing.T) {
	it := Item{Concept: model.Concept{Name: "Neuroscience", Tag: "applied/neuroscience"}}
	if it.Href() != "./tags/applied/neuroscience" {
		t.Errorf("unexpected href %q", it.Href())
	}
	if it.HasBadge() {
		t.Error("zero count should not show a badge")
	}
	it.Count = 1
	if !it.HasBadge() {
		t.Error("count 1 should show a badge")
	}
}
