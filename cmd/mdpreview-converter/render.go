package main

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdpreview/internal/assets"
	"github.com/alnah/go-mdpreview/internal/pipeline"
	"github.com/alnah/go-mdpreview/internal/process"
)

// pandocTimeout bounds the MultiMarkdown pandoc run.
const pandocTimeout = 30 * time.Second

// renderer turns one markdown file into a standalone page.
type renderer struct {
	flavor  pipeline.Flavor
	dark    bool
	math    bool
	mermaid bool
	assets  assets.AssetLoader
	runner  process.Runner
	logger  *slog.Logger
}

// RenderFile reads path and renders it.
func (r *renderer) RenderFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- converting a user-chosen file
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return r.Render(ctx, path, string(data))
}

// Render assembles body, theme stylesheets and optional scripts.
func (r *renderer) Render(ctx context.Context, path, markdown string) (string, error) {
	body, err := r.body(ctx, path, markdown)
	if err != nil {
		return "", err
	}

	css, err := assets.ThemeStyles(r.assets, r.dark)
	if err != nil {
		return "", err
	}
	tmpl, err := r.assets.LoadTemplate(assets.TemplateDocument)
	if err != nil {
		return "", err
	}
	doc, err := pipeline.NewDocumentRenderer(tmpl)
	if err != nil {
		return "", err
	}

	mermaidTheme := "neutral"
	if r.dark {
		mermaidTheme = "dark"
	}
	return doc.Render(&pipeline.DocumentData{
		Title:        filepath.Base(path),
		Flavor:       r.flavor,
		CSS:          template.CSS(css),   // #nosec G203 -- embedded or user-provided stylesheet
		Body:         template.HTML(body), // #nosec G203 -- converter output is the page
		Math:         r.math && pipeline.NeedsMath(markdown),
		Mermaid:      r.mermaid && pipeline.NeedsMermaid(markdown, body),
		MermaidTheme: mermaidTheme,
	})
}

// body converts markdown to an HTML fragment. MultiMarkdown goes through
// pandoc when it is installed, with goldmark as the fallback.
func (r *renderer) body(ctx context.Context, path, markdown string) (string, error) {
	if r.flavor == pipeline.FlavorMMD {
		body, err := r.pandocBody(ctx, path)
		if err == nil {
			return body, nil
		}
		r.logger.Warn("pandoc unavailable, rendering with goldmark", "error", err)
	}
	return pipeline.NewGoldmarkConverter(r.flavor, r.dark).ToHTML(ctx, markdown)
}

// pandocBody runs pandoc on path and keeps the inside of <body>.
func (r *renderer) pandocBody(ctx context.Context, path string) (string, error) {
	runner := r.runner
	if runner == nil {
		runner = &process.ExecRunner{}
	}
	ctx, cancel := context.WithTimeout(ctx, pandocTimeout)
	defer cancel()

	out, err := runner.Run(ctx, "pandoc", path, "-f", "markdown_mmd", "-t", "html5", "--standalone")
	if err != nil {
		return "", err
	}
	return pipeline.ExtractBody(out.Stdout)
}
