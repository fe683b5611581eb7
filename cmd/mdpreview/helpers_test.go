package main

// Notes:
// - fakeRunner: scripted process.Runner keyed by program name, injected via
//   Environment.Runner so commands never spawn converters or gsettings.
// - writeConfig pins converters and theme so tests do not depend on the host.
// - newTestEnv captures stdout and stderr.

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-mdpreview/internal/process"
)

// ---------------------------------------------------------------------------
// fakeRunner - scripted command runner
// ---------------------------------------------------------------------------

type fakeRunner struct {
	mu      sync.Mutex
	calls   [][]string
	results map[string]process.Output
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]process.Output{}, errs: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (process.Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))

	if err, ok := f.errs[name]; ok {
		return process.Output{}, err
	}
	out, ok := f.results[name]
	if !ok {
		return process.Output{}, fmt.Errorf("%w: %s", process.ErrNotFound, name)
	}
	return out, nil
}

func (f *fakeRunner) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c[0] == name {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Environment and file helpers
// ---------------------------------------------------------------------------

func newTestEnv(runner process.Runner) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{Stdout: &stdout, Stderr: &stderr, Runner: runner}, &stdout, &stderr
}

// writeConfig writes a config whose user and system converters do not exist.
func writeConfig(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	lines := []string{
		"converters:",
		"  user: " + filepath.Join(dir, "missing-user"),
		"  system: " + filepath.Join(dir, "missing-system"),
		"  generic: pandoc",
		"theme:",
		"  mode: light",
	}
	lines = append(lines, extra...)
	path := filepath.Join(dir, "mdpreview.yaml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func writeMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing markdown: %v", err)
	}
	return path
}
