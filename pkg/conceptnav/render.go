package conceptnav

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vanderheijden86/conceptnav/pkg/concepts"
	"github.com/vanderheijden86/conceptnav/pkg/debug"
	"github.com/vanderheijden86/conceptnav/pkg/metrics"
	"github.com/vanderheijden86/conceptnav/pkg/model"
)

// Title is the label rendered above the list.
const Title = "Concepts"

// RootClass is always present on the nav element.
const RootClass = "concept-nav"

const navTemplate = `<nav class="{{.Class}}">
  <h3 class="concept-nav-title">{{.Title}}</h3>
  <ul class="concept-list">
    {{- range .Items}}
    <li class="concept-item">
      <a href="{{.Href}}" class="concept-link">
        <span class="concept-name">{{.Concept.Name}}</span>
        {{- if .HasBadge}}
        <span class="concept-count">{{.Count}}</span>
        {{- end}}
      </a>
    </li>
    {{- end}}
  </ul>
</nav>`

var navTmpl = template.Must(template.New("concept-nav").Parse(navTemplate))

// Options carries the caller-controlled render settings.
type Options struct {
	// DisplayClass is attached to the nav element next to RootClass.
	// Layouts use it for visibility (e.g. "desktop-only").
	DisplayClass string
}

// Result is the output of a single render.
type Result struct {
	HTML  template.HTML
	Items []Item
}

type navView struct {
	Class string
	Title string
	Items []Item
}

// Renderer renders the sidebar for a fixed concept table.
type Renderer struct {
	concepts []model.Concept
}

// New creates a Renderer for the given concept table. A nil or empty table
// selects the built-in one. The table is copied.
func New(list []model.Concept) *Renderer {
	if len(list) == 0 {
		return &Renderer{concepts: concepts.Default()}
	}
	own := make([]model.Concept, len(list))
	copy(own, list)
	return &Renderer{concepts: own}
}

var defaultRenderer = New(nil)

// Concepts returns a copy of the renderer's table in declared order.
func (r *Renderer) Concepts() []model.Concept {
	out := make([]model.Concept, len(r.concepts))
	copy(out, r.concepts)
	return out
}

// Items counts tags across pages and returns the sorted concept items.
func (r *Renderer) Items(pages []model.Page) []Item {
	return Sort(r.concepts, CountTags(pages))
}

// WriteTo renders the nav markup for pages into w.
func (r *Renderer) WriteTo(w io.Writer, pages []model.Page, opts Options) ([]Item, error) {
	defer metrics.Timer(metrics.NavRender)()

	items := r.Items(pages)
	view := navView{
		Class: ClassNames(opts.DisplayClass, RootClass),
		Title: Title,
		Items: items,
	}
	if err := navTmpl.Execute(w, view); err != nil {
		return nil, fmt.Errorf("execute nav template: %w", err)
	}
	debug.Log("rendered %d concepts from %d pages", len(items), len(pages))
	return items, nil
}

// Render renders the nav markup for pages. It never fails: pages without
// tags count as having none and unknown tags count as zero.
func (r *Renderer) Render(pages []model.Page, opts Options) Result {
	var sb strings.Builder
	items, err := r.WriteTo(&sb, pages, opts)
	if err != nil {
		// strings.Builder never fails and the view only holds strings and ints.
		panic(err)
	}
	return Result{HTML: template.HTML(sb.String()), Items: items}
}

// Render renders the built-in concept table for pages.
func Render(pages []model.Page, opts Options) Result {
	return defaultRenderer.Render(pages, opts)
}

// ClassNames joins the non-empty class names with single spaces.
func ClassNames(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
