package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// StyleInjector defines the contract for style block injection into HTML.
type StyleInjector interface {
	InjectStyle(ctx context.Context, htmlContent, styleBlock string) string
}

// HeadStyleInjection places a complete <style> block as early as possible
// in the document so that later stylesheets from the converter win.
type HeadStyleInjection struct{}

// headOpen matches <head> or <head attr...>, but not <header>.
var headOpen = regexp.MustCompile(`(?i)<head(?:\s[^>]*)?>`)

// styleOpen matches the first <style> or <style attr...>.
var styleOpen = regexp.MustCompile(`(?i)<style(?:\s[^>]*)?>`)

// InjectStyle inserts styleBlock immediately after the opening <head> tag.
// Without a <head>, it goes before the first <style>; without either, it is
// prepended. An empty block leaves the HTML unchanged.
func (s *HeadStyleInjection) InjectStyle(ctx context.Context, htmlContent, styleBlock string) string {
	if styleBlock == "" {
		return htmlContent
	}
	if ctx.Err() != nil {
		return htmlContent
	}
	return InjectStyle(htmlContent, styleBlock)
}

// InjectStyle is the context-free form of HeadStyleInjection.InjectStyle.
func InjectStyle(htmlContent, styleBlock string) string {
	if styleBlock == "" {
		return htmlContent
	}
	if loc := headOpen.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[1]] + styleBlock + htmlContent[loc[1]:]
	}
	if loc := styleOpen.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[0]] + styleBlock + htmlContent[loc[0]:]
	}
	return styleBlock + htmlContent
}

// StyleBlock wraps raw CSS in a <style> element.
// CSS content is sanitized so it cannot close the element early.
func StyleBlock(css string) string {
	if css == "" {
		return ""
	}
	return "<style>" + sanitizeCSS(css) + "</style>"
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// InjectBeforeBodyEnd inserts a snippet before </body>, or appends it.
func InjectBeforeBodyEnd(htmlContent, snippet string) string {
	if snippet == "" {
		return htmlContent
	}
	lowerHTML := strings.ToLower(htmlContent)
	if idx := strings.LastIndex(lowerHTML, "</body>"); idx != -1 {
		return htmlContent[:idx] + snippet + htmlContent[idx:]
	}
	return htmlContent + snippet
}
