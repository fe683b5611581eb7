package pipeline

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoBody indicates a document without a <body> element.
var ErrNoBody = errors.New("document has no body")

// InjectBaseHref adds <base href="baseURI"> as the first element of <head>
// so relative links and images resolve against the source document.
// An existing <base> keeps its position and gets the new href.
// Fragments are returned unchanged: they have no head to carry the element.
func InjectBaseHref(htmlContent, baseURI string) (string, error) {
	if baseURI == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	if isFragment {
		return htmlContent, nil
	}

	head := findElement(doc, atom.Head)
	if head == nil {
		return htmlContent, nil
	}

	if base := findElement(head, atom.Base); base != nil {
		setAttr(base, "href", baseURI)
	} else {
		base := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Base,
			Data:     "base",
			Attr:     []html.Attribute{{Key: "href", Val: baseURI}},
		}
		head.InsertBefore(base, head.FirstChild)
	}

	return renderHTML(doc, false)
}

// ExtractBody returns the inner HTML of <body>. Used to embed the output of
// standalone converters into our own document.
func ExtractBody(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}
	body := findElement(doc, atom.Body)
	if body == nil {
		return "", ErrNoBody
	}

	var buf strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// findElement returns the first element with the given atom, depth first.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
