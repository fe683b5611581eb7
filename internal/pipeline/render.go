package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// Code highlighting styles. Older chroma releases lack github-dark.
const (
	lightCodeStyle        = "github"
	darkCodeStyle         = "github-dark"
	fallbackDarkCodeStyle = "monokai"
)

// HTMLConverter abstracts Markdown to HTML fragment conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment for one flavor.
type GoldmarkConverter struct {
	md     goldmark.Markdown
	flavor Flavor
}

// NewGoldmarkConverter builds a converter for flavor with a light or dark
// highlighting style. Unknown flavors render as gfm.
func NewGoldmarkConverter(flavor Flavor, dark bool) *GoldmarkConverter {
	if _, ok := ParseFlavor(string(flavor)); !ok {
		flavor = FlavorGFM
	}

	exts := []goldmark.Extender{
		highlighting.NewHighlighting(
			highlighting.WithStyle(CodeStyle(dark)),
			highlighting.WithFormatOptions(
				html.WithClasses(false), // inline styles, no external stylesheet
			),
		),
		mermaidExtension{},
	}
	rendererOpts := []goldmark.Option{}
	parserOpts := []parser.Option{parser.WithAutoHeadingID()}

	switch flavor {
	case FlavorGFM, FlavorGitLab:
		exts = append(exts, extension.GFM, extension.Footnote, extension.DefinitionList)
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithHardWraps()))
	case FlavorExtra:
		exts = append(exts, extension.Table, extension.Footnote, extension.DefinitionList)
		parserOpts = append(parserOpts, parser.WithAttribute())
	case FlavorMMD:
		exts = append(exts, extension.Table, extension.Footnote, extension.DefinitionList, extension.Typographer)
		parserOpts = append(parserOpts, parser.WithAttribute())
	case FlavorStandard:
		exts = append(exts, extension.Table, extension.Footnote)
	case FlavorCommonMark:
		parserOpts = nil
	}

	opts := []goldmark.Option{goldmark.WithExtensions(exts...)}
	if len(parserOpts) > 0 {
		opts = append(opts, goldmark.WithParserOptions(parserOpts...))
	}
	opts = append(opts, rendererOpts...)

	return &GoldmarkConverter{md: goldmark.New(opts...), flavor: flavor}
}

// Flavor returns the flavor the converter was built for.
func (c *GoldmarkConverter) Flavor() Flavor {
	return c.flavor
}

// ToHTML converts Markdown content to an HTML fragment and links flavor
// references. Supports context cancellation via goroutine + select pattern
// since Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(normalizeLineEndings(content)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		out, err := LinkReferences(buf.String(), c.flavor.References())
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: out}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// CodeStyle returns the chroma style name for the theme.
func CodeStyle(dark bool) string {
	if !dark {
		return lightCodeStyle
	}
	if _, ok := styles.Registry[darkCodeStyle]; ok {
		return darkCodeStyle
	}
	return fallbackDarkCodeStyle
}

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// Compile-time interface check.
var _ HTMLConverter = (*GoldmarkConverter)(nil)
