package mdpreview

import "errors"

// Sentinel errors for conversion stages.
var (
	ErrBinaryNotFound = errors.New("converter binary not found")
	ErrProcessExit    = errors.New("converter exited with non-zero status")
	ErrSpawn          = errors.New("converter could not be run")
	ErrFileRead       = errors.New("failed to read markdown file")
)

// Sentinel errors for the preview lifecycle.
var (
	ErrLoad              = errors.New("failed to load preview")
	ErrConversionPending = errors.New("conversion already in progress")
	ErrLoadInProgress    = errors.New("load already in progress")
	ErrClosed            = errors.New("already closed")
)

// Sentinel errors for the browser surface.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPrint          = errors.New("failed to print page")
)
