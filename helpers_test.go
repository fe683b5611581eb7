package mdpreview

// Notes:
// - fakeRunner: scripted process.Runner keyed by program name
// - fakeSurface: in-memory Surface that reports loads like a real host
// - writeMarkdown: creates a markdown file under t.TempDir()

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alnah/go-mdpreview/internal/process"
)

// ---------------------------------------------------------------------------
// fakeRunner - scripted command runner
// ---------------------------------------------------------------------------

type fakeCall struct {
	name string
	args []string
}

type fakeResult struct {
	out process.Output
	err error
	// block, when set, holds Run until it is closed or ctx ends.
	block chan struct{}
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []fakeCall
	results map[string]fakeResult
}

func newFakeRunner(results map[string]fakeResult) *fakeRunner {
	return &fakeRunner{results: results}
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (process.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{name: name, args: append([]string(nil), args...)})
	res, ok := f.results[name]
	f.mu.Unlock()

	if !ok {
		return process.Output{}, fmt.Errorf("%w: %s", process.ErrNotFound, name)
	}
	if res.block != nil {
		select {
		case <-res.block:
		case <-ctx.Done():
			return process.Output{}, fmt.Errorf("%w: %v", process.ErrTimeout, ctx.Err())
		}
	}
	return res.out, res.err
}

func (f *fakeRunner) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

func (f *fakeRunner) names() []string {
	var names []string
	for _, c := range f.Calls() {
		names = append(names, c.name)
	}
	return names
}

// ---------------------------------------------------------------------------
// fakeSurface - in-memory display
// ---------------------------------------------------------------------------

type fakeSurface struct {
	mu       sync.Mutex
	listener LoadListener
	loads    []string
	bases    []string
	scripts  []string
	prints   int
	closed   bool

	loadErr error
	// failLoads fails only the first n loads when set.
	failLoads int
	printErr  error
	scriptErr error
}

func (s *fakeSurface) SetLoadListener(l LoadListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

func (s *fakeSurface) LoadHTML(ctx context.Context, html, baseURI string) error {
	s.mu.Lock()
	s.loads = append(s.loads, html)
	s.bases = append(s.bases, baseURI)
	err := s.loadErr
	if s.failLoads > 0 {
		s.failLoads--
		err = errors.New("navigation failed")
	}
	listener := s.listener
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if listener != nil {
		listener.OnLoadFinished(ctx)
	}
	return nil
}

func (s *fakeSurface) RunScript(_ context.Context, js string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts = append(s.scripts, js)
	return s.scriptErr
}

func (s *fakeSurface) PrintDialog(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prints++
	return s.printErr
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSurface) Loads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

func (s *fakeSurface) Scripts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.scripts...)
}

// Compile-time interface checks.
var (
	_ Surface        = (*fakeSurface)(nil)
	_ ListenerSetter = (*fakeSurface)(nil)
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func writeMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noConverters(string) bool { return false }

func allConverters(string) bool { return true }
