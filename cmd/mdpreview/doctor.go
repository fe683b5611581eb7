package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/config"
	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/process"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// versionProbeTimeout bounds each "--version" call.
const versionProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string        `json:"status"` // "ready", "warnings", "errors"
	Converters converterInfo `json:"converters"`
	Theme      themeInfo     `json:"theme"`
	Chrome     chromeInfo    `json:"chrome"`
	Env        envInfo       `json:"environment"`
	System     systemInfo    `json:"system"`
	Warnings   []string      `json:"warnings,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
}

// converterInfo reports which chain stages can run.
type converterInfo struct {
	User           string `json:"user"`
	UserFound      bool   `json:"user_found"`
	System         string `json:"system"`
	SystemFound    bool   `json:"system_found"`
	Generic        string `json:"generic"`
	GenericPath    string `json:"generic_path,omitempty"`
	GenericFound   bool   `json:"generic_found"`
	FirstStage     string `json:"first_stage"`
	GenericVersion string `json:"generic_version,omitempty"`
}

// themeInfo reports the theme policy and the resolved palette.
type themeInfo struct {
	Mode       string `json:"mode"`
	Query      string `json:"query,omitempty"`
	QueryFound bool   `json:"query_found"`
	Resolved   string `json:"resolved"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags or config.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	f, _, err := parseCommandFlags("doctor", args)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}
	a, err := newApp(f, env)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}

	result := a.runDoctor(ctx)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func (a *app) runDoctor(ctx context.Context) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	a.checkConverters(ctx, result)
	a.checkTheme(ctx, result)
	a.checkChrome(ctx, result)
	a.checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// runner returns the injected runner or the real one.
func (a *app) runner() process.Runner {
	if a.env.Runner != nil {
		return a.env.Runner
	}
	return &process.ExecRunner{}
}

// probeVersion runs "bin --version" and returns its first output line.
func (a *app) probeVersion(ctx context.Context, bin string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := a.runner().Run(ctx, bin, "--version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out.Stdout), "\n")
	return line, nil
}

// checkConverters detects the user, system and generic stages.
// The raw stage always works, so missing converters are warnings.
func (a *app) checkConverters(ctx context.Context, result *doctorResult) {
	c := &result.Converters
	c.User = a.cfg.Converters.User
	c.System = a.cfg.Converters.System
	c.Generic = a.cfg.Converters.Generic
	c.UserFound = c.User != "" && fileutil.IsExecutable(c.User)
	c.SystemFound = c.System != "" && fileutil.IsExecutable(c.System)
	if c.Generic != "" {
		c.GenericPath, c.GenericFound = process.LookPath(c.Generic)
	}

	switch {
	case c.UserFound:
		c.FirstStage = mdpreview.StageUser.String()
	case c.SystemFound:
		c.FirstStage = mdpreview.StageSystem.String()
	case c.GenericFound:
		c.FirstStage = mdpreview.StageGeneric.String()
	default:
		c.FirstStage = mdpreview.StageRaw.String()
	}

	if c.GenericFound {
		if v, err := a.probeVersion(ctx, c.GenericPath); err == nil {
			c.GenericVersion = v
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Could not get %s version: %v", c.Generic, err))
		}
	}

	if !c.UserFound && !c.SystemFound {
		if c.GenericFound {
			result.Warnings = append(result.Warnings,
				"No mdpreview converter installed; previews use "+c.Generic)
		} else {
			result.Warnings = append(result.Warnings,
				"No converter found; previews show plain text. Install mdpreview-converter or pandoc")
		}
	}
}

// checkTheme resolves the theme exactly as a preview would.
func (a *app) checkTheme(ctx context.Context, result *doctorResult) {
	t := &result.Theme
	t.Mode = a.cfg.Theme.Mode
	if len(a.cfg.Theme.Query) > 0 {
		t.Query = strings.Join(a.cfg.Theme.Query, " ")
		_, t.QueryFound = process.LookPath(a.cfg.Theme.Query[0])
	}
	t.Resolved = string(a.themes().Resolve(ctx))

	if t.Mode == config.ThemeAuto && !t.QueryFound {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Theme query %q not found; auto theme resolves to light", t.Query))
	}
}

// checkChrome detects Chrome/Chromium installation.
func (a *app) checkChrome(ctx context.Context, result *doctorResult) {
	chromePath := a.cfg.Browser.Bin
	if chromePath == "" {
		chromePath = result.Env.BrowserBin
	}
	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN (needed by print)")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	if v, err := a.probeVersion(ctx, chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = !a.cfg.Browser.NoSandbox
}

// checkEnvironment detects container and CI environments.
func (a *app) checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !a.cfg.Browser.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected; the sandbox is turned off at launch. Set browser.noSandbox to make it explicit")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	if os.Getenv("MDPREVIEW_CONTAINER") == "1" {
		return true, "MDPREVIEW_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory used for browser pages.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdpreview-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdpreview doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Converters")
	printFound(w, "User converter", r.Converters.User, r.Converters.UserFound)
	printFound(w, "System converter", r.Converters.System, r.Converters.SystemFound)
	generic := r.Converters.Generic
	if r.Converters.GenericVersion != "" {
		generic += " (" + r.Converters.GenericVersion + ")"
	}
	printFound(w, "Generic converter", generic, r.Converters.GenericFound)
	fmt.Fprintf(w, "  [OK] First stage: %s\n", r.Converters.FirstStage)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Theme")
	fmt.Fprintf(w, "  [OK] Mode: %s\n", r.Theme.Mode)
	if r.Theme.Query != "" {
		printFound(w, "Query", r.Theme.Query, r.Theme.QueryFound)
	}
	fmt.Fprintf(w, "  [OK] Resolved: %s\n", r.Theme.Resolved)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (browser.noSandbox)")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to preview")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printFound prints an [OK] or [WARN] line for an optional tool.
func printFound(w io.Writer, label, value string, found bool) {
	if value == "" {
		fmt.Fprintf(w, "  [WARN] %s: not configured\n", label)
		return
	}
	if found {
		fmt.Fprintf(w, "  [OK] %s: %s\n", label, value)
		return
	}
	fmt.Fprintf(w, "  [WARN] %s: %s (not found)\n", label, value)
}
