// Package yamlutil is the only place that imports the YAML library. Config
// files are decoded strictly; the config command encodes the effective
// settings back out.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// maxDocumentSize caps a config document. Real ones are a few hundred bytes.
const maxDocumentSize = 256 << 10

var (
	ErrEmptyDocument = errors.New("yamlutil: empty document")
	ErrTooLarge      = errors.New("yamlutil: document too large")
)

// DecodeStrict reads one document from r into v. Keys without a matching
// field are an error.
func DecodeStrict(r io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	if len(data) > maxDocumentSize {
		return fmt.Errorf("%w: over %d bytes", ErrTooLarge, maxDocumentSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyDocument
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Encode writes v to w with indented block sequences.
func Encode(w io.Writer, v any) error {
	if err := yaml.NewEncoder(w, yaml.IndentSequence(true)).Encode(v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}
