package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrDocumentRender indicates the document template failed to execute.
var ErrDocumentRender = errors.New("document template rendering failed")

// DocumentData fills the standalone document template.
type DocumentData struct {
	Title        string
	Flavor       Flavor
	CSS          template.CSS
	Body         template.HTML
	Math         bool
	Mermaid      bool
	MermaidTheme string
}

// DocumentRenderer renders converter output into a full HTML page.
type DocumentRenderer struct {
	tmpl *template.Template
}

// NewDocumentRenderer parses the document template.
func NewDocumentRenderer(tmplContent string) (*DocumentRenderer, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentRenderer{tmpl: tmpl}, nil
}

// Render executes the template. The body is trusted converter output.
func (d *DocumentRenderer) Render(data *DocumentData) (string, error) {
	if data.Title == "" {
		data.Title = "Markdown Preview"
	}
	if data.MermaidTheme == "" {
		data.MermaidTheme = "neutral"
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}

// NeedsMath reports whether the Markdown source uses TeX delimiters.
func NeedsMath(markdown string) bool {
	return strings.Contains(markdown, "$") ||
		strings.Contains(markdown, `\(`) ||
		strings.Contains(markdown, `\[`)
}

// NeedsMermaid reports whether the source or rendered body has diagrams.
func NeedsMermaid(markdown, body string) bool {
	return strings.Contains(markdown, "```mermaid") ||
		strings.Contains(body, `<div class="mermaid">`)
}
