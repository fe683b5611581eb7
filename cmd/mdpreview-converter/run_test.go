package main

// Notes:
// - run is driven with an in-memory Environment; pandoc and gsettings are
//   answered by fakeRunner, so no external program is spawned.
// - Output is checked for observable markers (scripts, palette colors,
//   flavor meta tag), not for exact markup.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdpreview/internal/process"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fakeRunner struct {
	outputs map[string]process.Output
	calls   [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (process.Output, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	out, ok := f.outputs[name]
	if !ok {
		return process.Output{}, fmt.Errorf("%w: %s", process.ErrNotFound, name)
	}
	return out, nil
}

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runConverter(t *testing.T, runner *fakeRunner, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}
	if runner != nil {
		env.Runner = runner
	}
	code := run(context.Background(), args, env)
	return stdout.String(), stderr.String(), code
}

// ---------------------------------------------------------------------------
// TestRun - Command line behavior
// ---------------------------------------------------------------------------

func TestRun_InfoFlags(t *testing.T) {
	t.Parallel()

	out, _, code := runConverter(t, nil, "--list-flavors")
	if code != exitSuccess {
		t.Fatalf("exit = %d, want 0", code)
	}
	for _, name := range []string{"gfm", "gitlab", "mmd", "commonmark", "extra", "standard"} {
		if !strings.Contains(out, name) {
			t.Errorf("--list-flavors missing %q:\n%s", name, out)
		}
	}

	out, _, code = runConverter(t, nil, "--version")
	if code != exitSuccess || !strings.Contains(out, "mdpreview-converter") {
		t.Errorf("--version: exit %d, out %q", code, out)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no file", nil, exitUsage},
		{"two files", []string{"a.md", "b.md"}, exitUsage},
		{"unknown flag", []string{"--nope", "a.md"}, exitUsage},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.md")}, exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, code := runConverter(t, nil, tt.args...); code != tt.want {
				t.Errorf("exit = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRun_BadTheme(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "x")
	if _, _, code := runConverter(t, nil, md, "--theme", "sepia"); code != exitUsage {
		t.Errorf("exit = %d, want %d", code, exitUsage)
	}
}

func TestRun_UnknownFlavorFallsBackToGFM(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "hello @octocat\n")
	out, stderr, code := runConverter(t, nil, md, "--theme", "light", "--flavor", "pymdown")

	if code != exitSuccess {
		t.Fatalf("exit = %d, want 0; stderr: %s", code, stderr)
	}
	if !strings.Contains(stderr, "unknown flavor") {
		t.Errorf("expected a warning, stderr: %s", stderr)
	}
	if !strings.Contains(out, `content="gfm"`) {
		t.Errorf("flavor meta should be gfm:\n%s", out)
	}
	if !strings.Contains(out, "https://github.com/octocat") {
		t.Errorf("gfm mentions should link to GitHub:\n%s", out)
	}
}

func TestRun_Themes(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "# Title\n")

	light, _, _ := runConverter(t, nil, md, "--theme", "light")
	dark, _, _ := runConverter(t, nil, md, "--theme", "dark")

	if strings.Contains(light, "#0d1117") {
		t.Error("light page should not include the dark palette")
	}
	if !strings.Contains(dark, "#0d1117") {
		t.Error("dark page should include the dark palette")
	}
	if !strings.Contains(light, "<h1") || !strings.Contains(light, "Title") {
		t.Errorf("page missing heading:\n%s", light)
	}
}

func TestRun_AutoThemeQueriesDesktop(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]process.Output{
		"gsettings": {Stdout: "'Adwaita-dark'\n"},
	}}
	md := writeMarkdown(t, "x\n")
	out, stderr, code := runConverter(t, runner, md, "--theme", "auto")

	if code != exitSuccess {
		t.Fatalf("exit = %d; stderr: %s", code, stderr)
	}
	if !strings.Contains(out, "#0d1117") {
		t.Error("auto theme with a dark desktop should render dark")
	}
}

func TestRun_Scripts(t *testing.T) {
	t.Parallel()

	src := "Euler: $e^{i\\pi}+1=0$\n\n```mermaid\ngraph TD; A-->B\n```\n"

	tests := []struct {
		name        string
		flags       []string
		wantMath    bool
		wantMermaid bool
	}{
		{"both enabled", nil, true, true},
		{"no math", []string{"--no-math"}, false, true},
		{"no mermaid", []string{"--no-mermaid"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			md := writeMarkdown(t, src)
			args := append([]string{md, "--theme", "light"}, tt.flags...)
			out, stderr, code := runConverter(t, nil, args...)
			if code != exitSuccess {
				t.Fatalf("exit = %d; stderr: %s", code, stderr)
			}
			if got := strings.Contains(out, "MathJax-script"); got != tt.wantMath {
				t.Errorf("MathJax present = %v, want %v", got, tt.wantMath)
			}
			if got := strings.Contains(out, "mermaid.min.js"); got != tt.wantMermaid {
				t.Errorf("Mermaid present = %v, want %v", got, tt.wantMermaid)
			}
			if !strings.Contains(out, `<div class="mermaid">`) {
				t.Error("mermaid fence should render as a diagram div")
			}
		})
	}
}

func TestRun_NoScriptsForPlainText(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "plain text\n")
	out, _, _ := runConverter(t, nil, md, "--theme", "light")
	if strings.Contains(out, "MathJax-script") || strings.Contains(out, "mermaid.min.js") {
		t.Errorf("plain text should load no scripts:\n%s", out)
	}
}

func TestRun_OutputFile(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "# Saved\n")
	target := filepath.Join(t.TempDir(), "out.html")
	out, stderr, code := runConverter(t, nil, md, "--theme", "light", "-o", target)

	if code != exitSuccess {
		t.Fatalf("exit = %d; stderr: %s", code, stderr)
	}
	if out != "" {
		t.Errorf("stdout should be empty with -o, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Saved") {
		t.Errorf("output file = %s", data)
	}
}

func TestRun_CustomAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "styles", "converter.css"), []byte("body { color: rebeccapurple; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	md := writeMarkdown(t, "x\n")
	out, stderr, code := runConverter(t, nil, md, "--theme", "light", "--assets", dir)
	if code != exitSuccess {
		t.Fatalf("exit = %d; stderr: %s", code, stderr)
	}
	if !strings.Contains(out, "rebeccapurple") {
		t.Error("custom stylesheet should override the embedded one")
	}
	if !strings.Contains(out, "<!DOCTYPE html>") {
		t.Error("template should fall back to the embedded document")
	}
}

func TestRun_InvalidAssetDir(t *testing.T) {
	t.Parallel()

	md := writeMarkdown(t, "x\n")
	_, _, code := runConverter(t, nil, md, "--theme", "light", "--assets", filepath.Join(t.TempDir(), "nope"))
	if code != exitUsage {
		t.Errorf("exit = %d, want %d", code, exitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestRun_MultiMarkdown - pandoc path and fallback
// ---------------------------------------------------------------------------

func TestRun_MultiMarkdownUsesPandoc(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]process.Output{
		"pandoc": {Stdout: "<html><head><title>x</title></head><body><p class=\"from-pandoc\">mmd</p></body></html>"},
	}}
	md := writeMarkdown(t, "Title: x\n\nmmd\n")
	out, stderr, code := runConverter(t, runner, md, "--theme", "light", "--flavor", "mmd")

	if code != exitSuccess {
		t.Fatalf("exit = %d; stderr: %s", code, stderr)
	}
	if !strings.Contains(out, `class="from-pandoc"`) {
		t.Errorf("body should come from pandoc:\n%s", out)
	}
	if strings.Count(out, "<body>") != 1 {
		t.Errorf("pandoc document should be unwrapped:\n%s", out)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "pandoc" || runner.calls[0][3] != "markdown_mmd" {
		t.Errorf("pandoc calls = %v", runner.calls)
	}
}

func TestRun_MultiMarkdownFallsBackToGoldmark(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]process.Output{}}
	md := writeMarkdown(t, "| a | b |\n|---|---|\n| 1 | 2 |\n")
	out, stderr, code := runConverter(t, runner, md, "--theme", "light", "--flavor", "mmd")

	if code != exitSuccess {
		t.Fatalf("exit = %d; stderr: %s", code, stderr)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("goldmark fallback should render the table:\n%s", out)
	}
	if !strings.Contains(stderr, "pandoc unavailable") {
		t.Errorf("expected a fallback warning, stderr: %s", stderr)
	}
}

func TestResolveTheme(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outputs: map[string]process.Output{}}
	logger := newDiscardLogger()

	if got, err := resolveTheme(context.Background(), "DARK", runner, logger); err != nil || got != "dark" {
		t.Errorf("DARK = %q, %v", got, err)
	}
	if got, err := resolveTheme(context.Background(), "auto", runner, logger); err != nil || got != "light" {
		t.Errorf("auto without gsettings = %q, %v; want light", got, err)
	}
	if _, err := resolveTheme(context.Background(), "sepia", runner, logger); !errors.Is(err, errInvalidTheme) {
		t.Errorf("sepia error = %v, want errInvalidTheme", err)
	}
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
