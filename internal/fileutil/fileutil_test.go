package fileutil_test

// Notes:
// - TestWriteTempFile_CreateTempError modifies TMPDIR and cannot run in parallel.
// - TestExpandHome uses t.Setenv(HOME) and cannot run in parallel.
// - IsExecutable permission cases are skipped on Windows, which has no mode bits.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/alnah/go-mdpreview/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid extension html", extension: "html"},
		{name: "valid extension pdf", extension: "pdf"},
		{name: "empty extension", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash path traversal", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash path traversal", extension: "..\\windows", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte injection", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation and cleanup
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	content := "<!DOCTYPE html><html><head></head><body>Preview</body></html>"
	path, cleanup, err := fileutil.WriteTempFile(content, "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.Contains(filepath.Base(path), "mdpreview-") {
		t.Errorf("path %q does not contain prefix 'mdpreview-'", path)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path %q does not have extension .html", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != content {
		t.Errorf("file content = %q, want %q", string(data), content)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("content", "../foo")
	if cleanup != nil {
		defer cleanup()
	}
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("WriteTempFile() error = %v, want %v", err, fileutil.ErrExtensionPathTraversal)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, cleanup, err := fileutil.WriteTempFile("content", "html")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil {
		t.Fatal("WriteTempFile() expected error when TMPDIR is invalid, got nil")
	}
	if !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %q, want error containing 'creating temp file'", err.Error())
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestIsExecutable - File checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "README.md")
	if err := os.WriteFile(testFile, []byte("# Hi"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "existing file returns true", path: testFile, want: true},
		{name: "directory returns false", path: tempDir, want: false},
		{name: "nonexistent path returns false", path: filepath.Join(tempDir, "nope"), want: false},
		{name: "empty path returns false", path: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsExecutable(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("no permission bits on Windows")
	}

	tempDir := t.TempDir()
	exe := filepath.Join(tempDir, "converter")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("failed to create executable: %v", err)
	}
	plain := filepath.Join(tempDir, "notes.md")
	if err := os.WriteFile(plain, []byte("# notes"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	if !fileutil.IsExecutable(exe) {
		t.Error("IsExecutable should be true for a 0755 file")
	}
	if fileutil.IsExecutable(plain) {
		t.Error("IsExecutable should be false for a 0644 file")
	}
	if fileutil.IsExecutable(tempDir) {
		t.Error("IsExecutable should be false for a directory")
	}
	if fileutil.IsExecutable(filepath.Join(tempDir, "missing")) {
		t.Error("IsExecutable should be false for a missing file")
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath / TestExpandHome - Path helpers
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"mdpreview", false},
		{"./mdpreview.yaml", true},
		{"/etc/mdpreview.yaml", true},
		{"C:\\config\\mdpreview.yaml", true},
		{"name.with.dots", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// NOTE: This test modifies HOME and cannot run in parallel.
func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/.local/bin/sushi-markdown-converter", filepath.Join(home, ".local/bin/sushi-markdown-converter")},
		{"/usr/local/bin/sushi-markdown-converter", "/usr/local/bin/sushi-markdown-converter"},
		{"pandoc", "pandoc"},
		{"~user/bin", "~user/bin"},
	}

	for _, tt := range tests {
		if got := fileutil.ExpandHome(tt.input); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPathToFileURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"/home/user/README.md", "file:///home/user/README.md"},
		{"/tmp/with space/a b.md", "file:///tmp/with%20space/a%20b.md"},
		{"/docs/", "file:///docs/"},
	}

	for _, tt := range tests {
		if got := fileutil.PathToFileURL(tt.input); got != tt.want {
			t.Errorf("PathToFileURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
