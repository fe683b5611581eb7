package main

import (
	"errors"
	"fmt"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage            = errors.New("invalid usage")
	ErrInvalidFlavor    = errors.New("invalid flavor")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrWriteOutput      = errors.New("failed to write output")
	ErrUnsupportedShell = errors.New("unsupported shell")
)

func usageError(msg string) error {
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}
