//go:build integration

package mdpreview

// Notes:
// - Launches Chromium through rod (downloaded on first run when
//   ROD_BROWSER_BIN is unset)
// - Each test owns its surface; Chrome instances are closed in t.Cleanup

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const integrationTimeout = 60 * time.Second

func newIntegrationSurface(t *testing.T, pdf string) *RodSurface {
	t.Helper()
	s := NewRodSurface(WithPDFOutput(pdf), WithRodLogger(discardLogger()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func assertValidPDFFile(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read PDF file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

// ---------------------------------------------------------------------------
// TestRodSurface_Integration
// ---------------------------------------------------------------------------

func TestRodSurface_LoadAndPrint_Integration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	pdf := filepath.Join(t.TempDir(), "out.pdf")
	s := newIntegrationSurface(t, pdf)
	listener := &countingListener{}
	s.SetLoadListener(listener)

	html := "<!DOCTYPE html><html><head><title>T</title></head><body><h1>Hello</h1></body></html>"
	if err := s.LoadHTML(ctx, html, "file:///tmp/doc.md"); err != nil {
		t.Fatalf("LoadHTML() error = %v", err)
	}
	if listener.finished != 1 {
		t.Errorf("OnLoadFinished called %d times, want 1", listener.finished)
	}
	if err := s.RunScript(ctx, "document.title = 'changed';"); err != nil {
		t.Errorf("RunScript() error = %v", err)
	}
	if err := s.PrintDialog(ctx); err != nil {
		t.Fatalf("PrintDialog() error = %v", err)
	}
	assertValidPDFFile(t, pdf)
}

func TestPreview_RawFallbackToPDF_Integration(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	md := writeMarkdown(t, "README.md", "# Title\n\n<script>alert(1)</script>\n")
	pdf := filepath.Join(t.TempDir(), "readme.pdf")
	surface := newIntegrationSurface(t, pdf)
	p := newTestPreview(t, md, newFakeRunner(nil), surface)

	if err := p.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if !p.Ready() {
		t.Fatal("preview should be ready after the raw view loads")
	}
	if err := p.Print(ctx); err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	assertValidPDFFile(t, pdf)
}
