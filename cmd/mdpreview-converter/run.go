package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/assets"
	"github.com/alnah/go-mdpreview/internal/pipeline"
	"github.com/alnah/go-mdpreview/internal/process"
)

// Exit codes.
const (
	exitSuccess = 0
	exitFailure = 1 // missing file or rendering failure
	exitUsage   = 2
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	// Runner executes pandoc and the theme query. Nil uses os/exec.
	Runner process.Runner
}

// converterFlags holds the parsed command line.
type converterFlags struct {
	theme       string
	flavor      string
	noMath      bool
	noMermaid   bool
	output      string
	listFlavors bool
	assetPath   string
	quiet       bool
	version     bool
}

func newFlagSet(f *converterFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("mdpreview-converter", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.theme, "theme", "auto", "theme: light, dark, auto")
	fs.StringVarP(&f.flavor, "flavor", "f", string(pipeline.FlavorGFM), "markdown flavor (see --list-flavors)")
	fs.BoolVar(&f.noMath, "no-math", false, "disable MathJax")
	fs.BoolVar(&f.noMermaid, "no-mermaid", false, "disable Mermaid diagrams")
	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")
	fs.BoolVar(&f.listFlavors, "list-flavors", false, "list available markdown flavors")
	fs.StringVar(&f.assetPath, "assets", "", "directory overriding styles/ and templates/")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVar(&f.version, "version", false, "show version")
	return fs
}

// run executes the converter and returns the process exit code.
func run(ctx context.Context, args []string, env *Environment) int {
	f := &converterFlags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		printUsage(env.Stderr, fs)
		return exitUsage
	}

	switch {
	case f.version:
		fmt.Fprintf(env.Stdout, "mdpreview-converter %s\n", Version)
		return exitSuccess
	case f.listFlavors:
		printFlavors(env.Stdout)
		return exitSuccess
	}

	if fs.NArg() != 1 {
		printUsage(env.Stderr, fs)
		return exitUsage
	}
	path := fs.Arg(0)

	level := slog.LevelInfo
	if f.quiet {
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))

	if _, err := os.Stat(path); err != nil {
		logger.Error("file not found", "path", path)
		return exitFailure
	}

	flavor, ok := pipeline.ParseFlavor(f.flavor)
	if !ok {
		logger.Warn("unknown flavor, using gfm", "flavor", f.flavor)
		flavor = pipeline.FlavorGFM
	}

	theme, err := resolveTheme(ctx, f.theme, env.Runner, logger)
	if err != nil {
		logger.Error("invalid theme", "error", err)
		return exitUsage
	}

	loader, err := assets.NewAssetResolver(f.assetPath)
	if err != nil {
		logger.Error("invalid asset path", "path", f.assetPath, "error", err)
		return exitUsage
	}
	defer func() { _ = loader.Close() }()

	r := &renderer{
		flavor:  flavor,
		dark:    theme == mdpreview.ThemeDark,
		math:    !f.noMath,
		mermaid: !f.noMermaid,
		assets:  loader,
		runner:  env.Runner,
		logger:  logger,
	}
	logger.Info("using flavor", "flavor", string(flavor), "theme", string(theme))

	html, err := r.RenderFile(ctx, path)
	if err != nil {
		logger.Error("render failed", "path", path, "error", err)
		return exitFailure
	}

	if f.output == "" {
		if _, err := io.WriteString(env.Stdout, html); err != nil {
			return exitFailure
		}
		return exitSuccess
	}
	if err := os.WriteFile(f.output, []byte(html), 0o644); err != nil { // #nosec G306 -- HTML output is meant to be readable
		logger.Error("writing output", "path", f.output, "error", err)
		return exitFailure
	}
	logger.Info("wrote html", "path", f.output)
	return exitSuccess
}

// errInvalidTheme is returned for a --theme outside light, dark and auto.
var errInvalidTheme = errors.New("theme must be light, dark, or auto")

// resolveTheme maps --theme to a palette. "auto" asks the desktop.
func resolveTheme(ctx context.Context, s string, runner process.Runner, logger *slog.Logger) (mdpreview.Theme, error) {
	if t, ok := mdpreview.ParseTheme(s); ok {
		return t, nil
	}
	if !strings.EqualFold(strings.TrimSpace(s), "auto") {
		return "", fmt.Errorf("%w: %q", errInvalidTheme, s)
	}
	opts := []mdpreview.ThemeOption{mdpreview.WithThemeLogger(logger)}
	if runner != nil {
		opts = append(opts, mdpreview.WithThemeRunner(runner))
	}
	return mdpreview.NewThemeResolver(opts...).Resolve(ctx), nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: mdpreview-converter <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Markdown to a standalone HTML page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}

func printFlavors(w io.Writer) {
	fmt.Fprintln(w, "Available markdown flavors:")
	for _, info := range pipeline.Flavors() {
		fmt.Fprintf(w, "  %-12s - %s\n", info.Name, info.Description)
	}
}
