package main

import (
	"io"
	"os"

	"github.com/alnah/go-mdpreview/internal/process"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// Runner executes converters and the theme query. Nil uses os/exec.
	Runner process.Runner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
