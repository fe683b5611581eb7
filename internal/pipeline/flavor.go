package pipeline

import "strings"

// Flavor names a Markdown dialect understood by the converter.
type Flavor string

// Supported flavors.
const (
	FlavorGFM        Flavor = "gfm"
	FlavorGitLab     Flavor = "gitlab"
	FlavorMMD        Flavor = "mmd"
	FlavorCommonMark Flavor = "commonmark"
	FlavorExtra      Flavor = "extra"
	FlavorStandard   Flavor = "standard"
)

// FlavorInfo describes a flavor for --list-flavors.
type FlavorInfo struct {
	Name        Flavor
	Description string
}

// Flavors lists every supported flavor in display order.
func Flavors() []FlavorInfo {
	return []FlavorInfo{
		{FlavorStandard, "Standard Markdown with tables and footnotes"},
		{FlavorGFM, "GitHub Flavored Markdown"},
		{FlavorCommonMark, "CommonMark specification"},
		{FlavorGitLab, "GitLab Flavored Markdown"},
		{FlavorExtra, "Markdown Extra"},
		{FlavorMMD, "MultiMarkdown (pandoc when available)"},
	}
}

// ParseFlavor returns the flavor named s (case-insensitive).
func ParseFlavor(s string) (Flavor, bool) {
	f := Flavor(strings.ToLower(strings.TrimSpace(s)))
	for _, info := range Flavors() {
		if info.Name == f {
			return f, true
		}
	}
	return "", false
}

// References returns how the flavor links @mentions and issue numbers.
func (f Flavor) References() ReferenceStyle {
	switch f {
	case FlavorGFM:
		return GitHubReferences
	case FlavorGitLab:
		return GitLabReferences
	default:
		return NoReferences
	}
}
