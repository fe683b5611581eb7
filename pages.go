package mdpreview

import (
	"html"
	"strings"
)

// RawNoticeTitle is the banner heading of the degraded view.
const RawNoticeTitle = "Basic Markdown View"

// PrintHint tells the user how to print from the preview.
const PrintHint = "Press Ctrl+P to print"

// skeleton wraps body in the base document used by the raw view and the
// error page.
func skeleton(theme Theme, title, body string) string {
	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title>\n")
	buf.WriteString(BaseCSS(theme))
	buf.WriteString("</head>\n<body>\n")
	buf.WriteString(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.String()
}

// RawDocument shows escaped Markdown source under a notice banner.
func RawDocument(theme Theme, markdown string) string {
	var body strings.Builder
	body.WriteString("<div class=\"markdown-notice\">\n")
	body.WriteString("<p><strong>" + RawNoticeTitle + "</strong> - For full rendering, install the markdown converter.</p>\n")
	body.WriteString("<p><em>" + PrintHint + "</em></p>\n")
	body.WriteString("</div>\n")
	body.WriteString("<pre class=\"markdown-raw\">")
	body.WriteString(html.EscapeString(markdown))
	body.WriteString("</pre>\n")
	return skeleton(theme, "Markdown Preview", body.String())
}

// ErrorDocument reports a failed preview with troubleshooting steps.
func ErrorDocument(theme Theme, message string) string {
	var body strings.Builder
	body.WriteString("<h1>Error</h1>\n")
	body.WriteString("<p>" + html.EscapeString(message) + "</p>\n")
	body.WriteString("<p>Please check that:</p>\n<ul>\n")
	body.WriteString("<li>The markdown file is valid and readable</li>\n")
	body.WriteString("<li>The markdown converter is properly installed</li>\n")
	body.WriteString("<li>Required dependencies are available</li>\n")
	body.WriteString("</ul>\n")
	body.WriteString("<p><em>" + PrintHint + " this error report</em></p>\n")
	return skeleton(theme, "Error", body.String())
}
