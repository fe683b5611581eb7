package mdpreview

import (
	"log/slog"
	"strings"
	"time"
)

// Flavor selects the Markdown dialect passed to converters.
type Flavor string

// Flavors the detector produces.
const (
	FlavorGFM    Flavor = "gfm"
	FlavorGitLab Flavor = "gitlab"
	FlavorMMD    Flavor = "mmd"
)

// Theme selects the light or dark palette.
type Theme string

// Themes.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps "light" and "dark" (any case) to a Theme.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// Request is the input of one conversion.
type Request struct {
	Path   string
	Theme  Theme
	Flavor Flavor

	// Source supplies the markdown for the raw stage. Nil reads Path.
	Source func() ([]byte, error)
}

// Stage identifies which link of the chain produced a Result.
type Stage int

// Chain stages in the order they are tried.
const (
	StageUser Stage = iota
	StageSystem
	StageGeneric
	StageRaw
)

// String returns the stage name used in logs and metrics.
func (s Stage) String() string {
	switch s {
	case StageUser:
		return "user"
	case StageSystem:
		return "system"
	case StageGeneric:
		return "generic"
	case StageRaw:
		return "raw"
	}
	return "unknown"
}

// Result is the HTML produced by exactly one stage.
type Result struct {
	HTML     string
	Stage    Stage
	Duration time.Duration
}

// mimeTypes lists the Markdown MIME types a preview handles.
var mimeTypes = []string{
	"text/markdown",
	"text/x-markdown",
	"application/x-markdown",
	"text/x-web-markdown",
}

// MIMETypes returns the MIME types the previewer registers for.
func MIMETypes() []string {
	out := make([]string, len(mimeTypes))
	copy(out, mimeTypes)
	return out
}

// HandlesMIME reports whether mime is one of MIMETypes, ignoring case and
// parameters such as charset.
func HandlesMIME(mime string) bool {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, m := range mimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

// MenuItem is an entry of the preview context menu.
type MenuItem int

// Context menu entries.
const (
	MenuPrint MenuItem = iota
	MenuSeparator
	MenuCopy
	MenuSelectAll
)

// String returns the menu label.
func (m MenuItem) String() string {
	switch m {
	case MenuPrint:
		return "Print"
	case MenuSeparator:
		return "---"
	case MenuCopy:
		return "Copy"
	case MenuSelectAll:
		return "Select All"
	}
	return ""
}

// Modifier is a keyboard modifier bit set.
type Modifier uint8

// Modifier bits.
const (
	ModControl Modifier = 1 << iota
	ModShift
	ModAlt
)

// KeyEvent is a key press forwarded by the host.
type KeyEvent struct {
	Key       rune
	Modifiers Modifier
}

// logger returns l, or slog.Default when l is nil.
func logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
