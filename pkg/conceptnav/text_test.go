package conceptnav

import (
	"strings"
	"testing"
)

func TestRenderText_Plain(t *testing.T) {
	items := Render(scenarioPages(), Options{}).Items
	out := RenderText(items, TextOptions{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2+len(items) {
		t.Fatalf("expected %d lines, got %d:\n%s", 2+len(items), len(lines), out)
	}
	if lines[0] != "CONCEPTS" {
		t.Errorf("expected title line, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "Knowledge Graphs") || !strings.HasSuffix(lines[2], " 2") {
		t.Errorf("unexpected first item line %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Neuroscience") || !strings.HasSuffix(lines[3], " 1") {
		t.Errorf("unexpected second item line %q", lines[3])
	}
	if lines[4] != "Memory Systems" {
		t.Errorf("zero-count line should carry no count, got %q", lines[4])
	}
	// Counts line up in a single column.
	if len(lines[2]) != len(lines[3]) {
		t.Errorf("count column misaligned:\n%q\n%q", lines[2], lines[3])
	}
}

func TestRenderText_Width(t *testing.T) {
	items := Render(scenarioPages(), Options{}).Items
	out := RenderText(items, TextOptions{Width: 40})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines[2]) != 40 {
		t.Errorf("expected first item padded to 40 columns, got %d: %q", len(lines[2]), lines[2])
	}
}

func TestRenderText_NoCounts(t *testing.T) {
	res := Render(nil, Options{})
	out := RenderText(res.Items, TextOptions{})

	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n")[2:] {
		if strings.TrimRight(line, " ") != line || strings.ContainsAny(line, "0123456789") {
			t.Errorf("unexpected count or padding in %q", line)
		}
	}
}

func TestRenderText_Styled(t *testing.T) {
	items := Render(scenarioPages(), Options{}).Items
	out := RenderText(items, TextOptions{Styled: true})

	for _, name := range []string{"CONCEPTS", "Knowledge Graphs", "Therapeutics"} {
		if !strings.Contains(out, name) {
			t.Errorf("styled output missing %q", name)
		}
	}
}
