// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-mdpreview/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 or browser.noSandbox for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the per-stage budget.
func ForTimeout() string {
	return format("for slow converters, use --timeout or timeouts.stage in mdpreview.yaml")
}

// ForConverterMissing returns a hint listing the converters the chain looks for.
// userPath and systemPath are the configured converter locations.
func ForConverterMissing(userPath, systemPath string) string {
	var hints []string
	if userPath != "" || systemPath != "" {
		hints = append(hints, "install mdpreview-converter as "+firstNonEmpty(userPath, systemPath))
	}
	hints = append(hints, "or install pandoc for full rendering")
	return formatHints(hints)
}

// ForFileRead returns a hint for unreadable markdown files.
func ForFileRead() string {
	return format("check the file exists and is readable")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/mdpreview.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdpreview") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
