package mdpreview

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdpreview/internal/fileutil"
)

// Document is the file being previewed.
type Document interface {
	Path() string
	Basename() string
	URI() string
	ReadAll() ([]byte, error)
}

// FileDocument is a Document on the local filesystem.
type FileDocument struct {
	path string
	uri  string
}

// NewFileDocument resolves path to an absolute path. The file does not
// need to exist yet: reading is deferred to the raw stage.
func NewFileDocument(path string) (*FileDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	return &FileDocument{path: abs, uri: fileutil.PathToFileURL(abs)}, nil
}

// Path returns the absolute path.
func (d *FileDocument) Path() string { return d.path }

// Basename returns the final path element.
func (d *FileDocument) Basename() string { return filepath.Base(d.path) }

// URI returns the file:// URI used as the base for relative links.
func (d *FileDocument) URI() string { return d.uri }

// ReadAll reads the file contents.
func (d *FileDocument) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(d.path) // #nosec G304 -- previewing a user-chosen file
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileRead, err)
	}
	return data, nil
}

// Compile-time interface check.
var _ Document = (*FileDocument)(nil)
