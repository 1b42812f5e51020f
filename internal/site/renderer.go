package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// templateFS contains the HTML templates bundled with the binary.
//
//go:embed templates/*.gohtml
var templateFS embed.FS

var pageTemplates = []string{"index", "roadmap", "phase", "topic", "notfound"}

// Renderer executes page templates
type Renderer struct {
	pages      map[string]*template.Template
	markdown   goldmark.Markdown
	liveReload bool
}

// view is the data every page template receives
type view struct {
	Title      string
	Revision   string
	LiveReload bool
	Body       any
}

// NewRenderer parses the embedded templates. With liveReload set, pages
// include the websocket reload script.
func NewRenderer(liveReload bool) (*Renderer, error) {
	r := &Renderer{
		pages:      make(map[string]*template.Template, len(pageTemplates)),
		markdown:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
		liveReload: liveReload,
	}

	funcs := template.FuncMap{
		"markdown":    r.renderMarkdown,
		"roadmapPath": RoadmapPath,
		"phasePath":   PhasePath,
		"topicPath":   TopicPath,
		"inc":         func(i int) int { return i + 1 },
	}

	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.gohtml",
			"templates/"+name+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes the page as HTML
func (r *Renderer) Render(w io.Writer, p Page, revision string) error {
	tmpl, ok := r.pages[p.Template]
	if !ok {
		return fmt.Errorf("unknown template %q", p.Template)
	}

	return tmpl.ExecuteTemplate(w, "layout", view{
		Title:      p.Title,
		Revision:   revision,
		LiveReload: r.liveReload,
		Body:       p.Data,
	})
}

// RenderBytes renders the page into memory
func (r *Renderer) RenderBytes(p Page, revision string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, p, revision); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts authored markdown to HTML. Raw HTML in the source
// is dropped by goldmark's default renderer.
func (r *Renderer) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
