package pipeline

import (
	"regexp"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReferenceStyle selects how @mentions, #issues and !merge-requests link.
type ReferenceStyle int

const (
	// NoReferences leaves text untouched.
	NoReferences ReferenceStyle = iota
	// GitHubReferences links @user to the GitHub profile and #N to an issue anchor.
	GitHubReferences
	// GitLabReferences links @user, #N and !N to in-page anchors.
	GitLabReferences
)

// referencePattern finds candidate tokens; boundaries are checked by hand
// because RE2 has no lookbehind.
var referencePattern = regexp.MustCompile(`@\w+|#\d+|!\d+`)

// skipReferenceIn lists elements whose text must never be rewritten.
var skipReferenceIn = map[atom.Atom]bool{
	atom.A:      true,
	atom.Code:   true,
	atom.Pre:    true,
	atom.Script: true,
	atom.Style:  true,
	atom.Kbd:    true,
}

// LinkReferences turns references in text nodes into links.
// Text inside a, code, pre, script, style and kbd is left alone.
func LinkReferences(htmlContent string, style ReferenceStyle) (string, error) {
	if style == NoReferences || !referencePattern.MatchString(htmlContent) {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	linkNode(doc, style)
	return renderHTML(doc, isFragment)
}

func linkNode(n *html.Node, style ReferenceStyle) {
	if n.Type == html.ElementNode && skipReferenceIn[n.DataAtom] {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			replaceReferences(c, style)
		} else {
			linkNode(c, style)
		}
		c = next
	}
}

// replaceReferences splits a text node around each reference it links.
func replaceReferences(text *html.Node, style ReferenceStyle) {
	s := text.Data
	matches := referencePattern.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return
	}

	parent := text.Parent
	last := 0
	changed := false
	for _, m := range matches {
		token := s[m[0]:m[1]]
		if !atBoundary(s, m[0], m[1]) {
			continue
		}
		href, class, ok := referenceLink(token, style)
		if !ok {
			continue
		}
		if m[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: s[last:m[0]]}, text)
		}
		link := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.A,
			Data:     "a",
			Attr: []html.Attribute{
				{Key: "href", Val: href},
				{Key: "class", Val: class},
			},
		}
		link.AppendChild(&html.Node{Type: html.TextNode, Data: token})
		parent.InsertBefore(link, text)
		last = m[1]
		changed = true
	}

	if !changed {
		return
	}
	if last < len(s) {
		text.Data = s[last:]
	} else {
		parent.RemoveChild(text)
	}
}

// atBoundary rejects tokens glued to a preceding word (emails, a#1) or
// numeric references followed by letters (#12abc).
func atBoundary(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if s[start] != '@' && end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// referenceLink maps a token to its href and CSS class for the given style.
func referenceLink(token string, style ReferenceStyle) (href, class string, ok bool) {
	name := token[1:]
	switch token[0] {
	case '@':
		if style == GitLabReferences {
			return "#user-" + name, "mention", true
		}
		return "https://github.com/" + name, "mention", true
	case '#':
		return "#issue-" + name, "issue-link", true
	case '!':
		if style == GitLabReferences {
			return "#mr-" + name, "mr-link", true
		}
	}
	return "", "", false
}
