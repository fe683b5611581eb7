package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// previewFlags select how a document is converted.
type previewFlags struct {
	timeout string
	theme   string
	flavor  string
}

// cliFlags holds every flag a command may register.
type cliFlags struct {
	common  commonFlags
	preview previewFlags
	output  string
	addr    string
	json    bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addPreviewFlags adds conversion flags to a FlagSet.
func addPreviewFlags(fs *flag.FlagSet, f *previewFlags) {
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-stage converter timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.theme, "theme", "", "theme: auto, light, dark")
	fs.StringVar(&f.flavor, "flavor", "", "markdown flavor: gfm, gitlab, mmd (default: from file name)")
}

// newFlagSet registers the flags of command on a fresh FlagSet.
func newFlagSet(command string, f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	switch command {
	case "html":
		addCommonFlags(fs, &f.common)
		addPreviewFlags(fs, &f.preview)
		fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")
	case "print":
		addCommonFlags(fs, &f.common)
		addPreviewFlags(fs, &f.preview)
		fs.StringVarP(&f.output, "output", "o", "", "output PDF file")
	case "serve":
		addCommonFlags(fs, &f.common)
		addPreviewFlags(fs, &f.preview)
		fs.StringVar(&f.addr, "addr", "", "listen address (default: 127.0.0.1:8089)")
	case "doctor":
		addCommonFlags(fs, &f.common)
		fs.BoolVar(&f.json, "json", false, "machine-readable output")
	case "config":
		addCommonFlags(fs, &f.common)
	}
	return fs
}

// parseCommandFlags parses flags for command and returns positional args.
func parseCommandFlags(command string, args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(command, f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err.Error())
	}
	return f, fs.Args(), nil
}
