package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AssetLoader loads converter assets by bare name (no directory, no
// extension).
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// Built-in asset names.
const (
	StyleConverter     = "converter"
	StyleConverterDark = "converter-dark"
	TemplateDocument   = "document"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// FSLoader reads styles/<name>.css and templates/<name>.html from a file
// system.
type FSLoader struct {
	fsys fs.FS
	root *os.Root // nil for the embedded source
}

// NewEmbeddedLoader returns the loader for the built-in assets.
func NewEmbeddedLoader() *FSLoader {
	return &FSLoader{fsys: embedded}
}

// NewDirLoader opens dir as an asset source. Call Close when done.
func NewDirLoader(dir string) (*FSLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	return &FSLoader{fsys: root.FS(), root: root}, nil
}

// LoadStyle returns styles/<name>.css.
func (l *FSLoader) LoadStyle(name string) (string, error) {
	return l.load("styles", name, ".css")
}

// LoadTemplate returns templates/<name>.html.
func (l *FSLoader) LoadTemplate(name string) (string, error) {
	return l.load("templates", name, ".html")
}

func (l *FSLoader) load(dir, name, ext string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	data, err := fs.ReadFile(l.fsys, dir+"/"+name+ext)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %s/%s%s", ErrAssetNotFound, dir, name, ext)
	default:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
}

// Close releases the directory handle. It is a no-op for the embedded
// source.
func (l *FSLoader) Close() error {
	if l.root == nil {
		return nil
	}
	return l.root.Close()
}

var _ AssetLoader = (*FSLoader)(nil)
