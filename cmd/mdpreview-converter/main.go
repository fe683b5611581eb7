// Command mdpreview-converter renders a markdown file to a standalone HTML
// page. It implements the converter contract the previewer invokes:
//
//	mdpreview-converter <file> --theme light|dark|auto --flavor <flavor>
//
// The page is written to stdout, or to -o.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], &Environment{Stdout: os.Stdout, Stderr: os.Stderr}))
}
