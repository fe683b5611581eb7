package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  html        Convert a markdown file to styled HTML")
	fmt.Fprintln(w, "  print       Render a markdown file in headless Chrome and print it to PDF")
	fmt.Fprintln(w, "  serve       Live preview in the browser, reloading on change")
	fmt.Fprintln(w, "  doctor      Check converters, theme query, and Chrome")
	fmt.Fprintln(w, "  config      Show the effective configuration")
	fmt.Fprintln(w, "  mime        List handled MIME types")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpreview help <command>' for details on a specific command.")
}

// printCommonUsage prints flags shared by the preview commands.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-stage converter timeout (e.g., 30s)")
	fmt.Fprintln(w, "      --theme <s>           Theme: auto, light, dark")
	fmt.Fprintln(w, "      --flavor <s>          Flavor: gfm, gitlab, mmd (default: from file name)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

// commandUsage holds the help text of each command.
var commandUsage = map[string]func(io.Writer){
	"html": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview html <file> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Convert a markdown file to HTML using the first available converter:")
		fmt.Fprintln(w, "user converter, system converter, pandoc, then a plain-text view.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -o, --output <path>       Output HTML file (default: stdout)")
		fmt.Fprintln(w)
		printCommonUsage(w)
	},
	"print": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview print <file> -o <out.pdf> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Render a markdown file in headless Chrome and print it to PDF.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  -o, --output <path>       Output PDF file (required)")
		fmt.Fprintln(w)
		printCommonUsage(w)
	},
	"serve": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview serve <file> [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Serve a live preview; the page reloads when the file changes.")
		fmt.Fprintln(w, "Endpoints: / (preview), /events, /healthz, /metrics, /doc/ (document directory)")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --addr <host:port>    Listen address (default: 127.0.0.1:8089)")
		fmt.Fprintln(w)
		printCommonUsage(w)
	},
	"doctor": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview doctor [--json]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check converters, the desktop theme query, and Chrome.")
		fmt.Fprintln(w, "Exit code 1 when a check fails.")
	},
	"config": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview config [-c <name>]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Print the effective configuration as YAML (flags > env > file > defaults).")
	},
	"mime": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview mime")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "List the MIME types the previewer handles.")
	},
	"completion": printCompletionUsage,
	"version": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	},
	"help": func(w io.Writer) {
		fmt.Fprintln(w, "Usage: mdpreview help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	},
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	usage, ok := commandUsage[args[0]]
	if !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	usage(env.Stdout)
	return ExitSuccess
}
