package conceptnav

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// TextOptions configures the terminal rendition of the list.
type TextOptions struct {
	// Styled enables lipgloss colors. Leave off when output is not a terminal.
	Styled bool
	// Width is the minimum line width; 0 sizes to content.
	Width int
}

var (
	textTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9E9E9E"})
	textNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#2B2B2B", Dark: "#EBEBEC"})
	textCountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9E9E9E"}).
			Background(lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#393639"})
	textRuleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#393639"})
)

// RenderText renders items as an aligned terminal list. Items with a zero
// count get a blank count column, matching the missing badge in HTML.
func RenderText(items []Item, opts TextOptions) string {
	nameWidth := 0
	countWidth := 0
	for _, it := range items {
		nameWidth = max(nameWidth, runewidth.StringWidth(it.Concept.Name))
		if it.HasBadge() {
			countWidth = max(countWidth, len(strconv.Itoa(it.Count)))
		}
	}

	lineWidth := nameWidth
	if countWidth > 0 {
		lineWidth += 2 + countWidth
	}
	if opts.Width > lineWidth {
		nameWidth += opts.Width - lineWidth
		lineWidth = opts.Width
	}

	title := strings.ToUpper(Title)
	rule := strings.Repeat("─", max(lineWidth, runewidth.StringWidth(title)))
	if opts.Styled {
		title = textTitleStyle.Render(title)
		rule = textRuleStyle.Render(rule)
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteByte('\n')
	sb.WriteString(rule)
	sb.WriteByte('\n')

	for _, it := range items {
		name := runewidth.FillRight(it.Concept.Name, nameWidth)
		count := ""
		if it.HasBadge() {
			count = strconv.Itoa(it.Count)
		}
		if opts.Styled {
			name = textNameStyle.Render(name)
			if count != "" {
				count = textCountStyle.Render(count)
			}
		}

		line := name
		if countWidth > 0 {
			pad := countWidth
			if it.HasBadge() {
				pad -= len(strconv.Itoa(it.Count))
			}
			line += "  " + strings.Repeat(" ", pad) + count
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
