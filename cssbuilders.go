package mdpreview

import (
	"fmt"
	"strconv"
	"strings"
)

// palette holds the colors that differ between themes.
type palette struct {
	background   string
	text         string
	noticeBG     string
	noticeBorder string
	codeBG       string
	codeBorder   string
	rule         string
	muted        string
	link         string
}

var (
	lightPalette = palette{
		background:   "#ffffff",
		text:         "#24292f",
		noticeBG:     "#f3f4f6",
		noticeBorder: "#d1d5db",
		codeBG:       "#f6f8fa",
		codeBorder:   "#d0d7de",
		rule:         "#eaecef",
		muted:        "#6a737d",
		link:         "#0366d6",
	}
	darkPalette = palette{
		background:   "#0d1117",
		text:         "#e6edf3",
		noticeBG:     "#1f2937",
		noticeBorder: "#374151",
		codeBG:       "#161b22",
		codeBorder:   "#30363d",
		rule:         "#30363d",
		muted:        "#8b949e",
		link:         "#58a6ff",
	}
)

func paletteFor(theme Theme) palette {
	if theme == ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// monoFontFamily is shared by code, pre and the raw view.
const monoFontFamily = `'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace`

// BaseCSS returns the <style> block used by the generic stage, the raw view
// and the error page. Any theme other than dark gets the light palette.
func BaseCSS(theme Theme) string {
	p := paletteFor(theme)

	var buf strings.Builder
	buf.WriteString("<style>\n")
	fmt.Fprintf(&buf, `body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", "Noto Sans", Helvetica, Arial, sans-serif;
  line-height: 1.6;
  max-width: 800px;
  margin: 0 auto;
  padding: 40px 20px;
  font-size: 16px;
  background-color: %s;
  color: %s;
  word-wrap: break-word;
}
a { color: %s; }
.markdown-notice {
  background-color: %s;
  border: 1px solid %s;
  border-radius: 6px;
  padding: 12px;
  margin-bottom: 20px;
  font-size: 14px;
}
.markdown-raw {
  white-space: pre-wrap;
  word-wrap: break-word;
  font-family: %s;
  font-size: 13px;
  line-height: 1.5;
  background-color: %s;
  border: 1px solid %s;
  border-radius: 6px;
  padding: 16px;
  overflow-x: auto;
}
code, pre { font-family: %s; }
pre {
  padding: 16px;
  overflow: auto;
  background-color: %s;
  border-radius: 6px;
}
blockquote {
  margin: 0 0 16px;
  padding: 0 1em;
  color: %s;
  border-left: 0.25em solid %s;
}
h1, h2, h3, h4, h5, h6 {
  margin-top: 24px;
  margin-bottom: 16px;
  font-weight: 600;
  line-height: 1.25;
}
h1 { font-size: 2em; border-bottom: 1px solid %s; padding-bottom: 10px; }
h2 { font-size: 1.5em; border-bottom: 1px solid %s; padding-bottom: 8px; }
`, p.background, p.text, p.link,
		p.noticeBG, p.noticeBorder,
		monoFontFamily, p.codeBG, p.codeBorder,
		monoFontFamily, p.codeBG,
		p.muted, p.codeBorder,
		p.rule, p.rule)
	buf.WriteString(basePrintCSS)
	buf.WriteString("</style>\n")
	return buf.String()
}

// basePrintCSS is the print section of BaseCSS.
const basePrintCSS = `@media print {
  body {
    max-width: none !important;
    margin: 0 !important;
    padding: 20mm !important;
    font-size: 12pt !important;
    color: black !important;
    background: white !important;
  }
  .markdown-notice { display: none !important; }
  h1, h2, h3, h4, h5, h6 {
    page-break-after: avoid;
    color: black !important;
    border-color: black !important;
  }
  pre, blockquote, table, img { page-break-inside: avoid; }
  pre, blockquote {
    border: 1px solid #ccc !important;
    background: #f9f9f9 !important;
  }
  a { color: black !important; text-decoration: none !important; }
  a[href]:after { content: " (" attr(href) ")"; font-size: 0.8em; color: #666; }
}
`

// printCSS is injected after every load; later in the cascade than any
// converter stylesheet.
const printCSS = `@media print {
  body {
    max-width: none !important;
    margin: 0 !important;
    padding: 20mm !important;
    font-size: 12pt !important;
    line-height: 1.5 !important;
    color: black !important;
    background: white !important;
  }
  h1, h2, h3, h4, h5, h6 {
    page-break-after: avoid;
    color: black !important;
  }
  pre, blockquote {
    page-break-inside: avoid;
    border: 1px solid #ccc !important;
    background: #f9f9f9 !important;
  }
  table { page-break-inside: avoid; }
  img {
    max-width: 100% !important;
    page-break-inside: avoid;
  }
  .highlight {
    background: #f5f5f5 !important;
    border: 1px solid #ddd !important;
  }
  a {
    color: black !important;
    text-decoration: none !important;
  }
  a[href]:after {
    content: " (" attr(href) ")";
    font-size: 0.8em;
    color: #666;
  }
}`

// PrintCSS returns the post-load print stylesheet.
func PrintCSS() string {
	return printCSS
}

// PrintStyleScript returns JS that appends PrintCSS to document.head.
func PrintStyleScript() string {
	return "(function () {\n" +
		"  var style = document.createElement('style');\n" +
		"  style.setAttribute('data-mdpreview', 'print');\n" +
		"  style.textContent = " + strconv.Quote(printCSS) + ";\n" +
		"  (document.head || document.documentElement).appendChild(style);\n" +
		"})();"
}
