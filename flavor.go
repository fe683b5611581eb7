package mdpreview

import (
	"path/filepath"
	"strings"
)

// DetectFlavor picks a flavor from the file name. First match wins:
// "readme" or "github" gives gfm, "gitlab" gives gitlab, a .mmd extension
// gives mmd, anything else gfm.
func DetectFlavor(filename string) Flavor {
	name := strings.ToLower(filepath.Base(filename))
	switch {
	case strings.Contains(name, "readme"), strings.Contains(name, "github"):
		return FlavorGFM
	case strings.Contains(name, "gitlab"):
		return FlavorGitLab
	case strings.HasSuffix(name, ".mmd"):
		return FlavorMMD
	default:
		return FlavorGFM
	}
}
