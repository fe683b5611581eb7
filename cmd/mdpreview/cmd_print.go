package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	mdpreview "github.com/alnah/go-mdpreview"
)

// runPrint loads a markdown file in headless Chrome and prints it to -o.
func runPrint(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseCommandFlags("print", args)
	if err != nil {
		return err
	}
	path, err := singleFile("print", rest)
	if err != nil {
		return err
	}
	if f.output == "" {
		return usageError("print requires -o/--output")
	}
	a, err := newApp(f, env)
	if err != nil {
		return err
	}
	a.initBrowser()

	doc, err := mdpreview.NewFileDocument(path)
	if err != nil {
		return err
	}

	// A stale file would hide a print that only reached the script fallback.
	if err := os.Remove(f.output); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	surface := mdpreview.NewRodSurface(
		mdpreview.WithPDFOutput(f.output),
		mdpreview.WithBrowserBin(a.cfg.Browser.Bin),
		mdpreview.WithNoSandbox(a.cfg.Browser.NoSandbox),
		mdpreview.WithLoadTimeout(a.cfg.LoadTimeout()),
		mdpreview.WithRodLogger(a.logger),
	)
	preview := mdpreview.NewPreview(doc, surface, a.chain(), a.previewOptions()...)
	defer func() {
		if cerr := preview.Close(); cerr != nil {
			a.logger.Debug("closing browser", "error", cerr)
		}
	}()

	if err := preview.Load(ctx); err != nil {
		return a.withHints(err)
	}
	if err := printLoaded(ctx, preview, f.output, a.logger); err != nil {
		return a.withHints(err)
	}
	return nil
}

// loadedPage is the part of a Preview that printing drives.
type loadedPage interface {
	Wait(ctx context.Context) error
	Ready() bool
	Print(ctx context.Context) error
}

// printLoaded waits for the load and prints the page on screen. When the
// load failed but the error page came up, the report is printed and the
// load error is still returned.
func printLoaded(ctx context.Context, page loadedPage, output string, logger *slog.Logger) error {
	loadErr := page.Wait(ctx)
	if loadErr != nil && (ctx.Err() != nil || !page.Ready()) {
		return loadErr
	}

	if err := page.Print(ctx); err != nil {
		return errors.Join(loadErr, err)
	}
	if _, err := os.Stat(output); err != nil {
		return errors.Join(loadErr, fmt.Errorf("%w: no PDF written to %s", mdpreview.ErrPrint, output))
	}
	if loadErr != nil {
		logger.Warn("printed the error report instead of the document", "path", output)
	}
	return loadErr
}
