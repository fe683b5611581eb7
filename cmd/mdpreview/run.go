package main

import (
	"context"
	"fmt"

	mdpreview "github.com/alnah/go-mdpreview"
)

// commandFunc runs a command with its arguments (command name excluded).
type commandFunc func(ctx context.Context, args []string, env *Environment) error

// commands maps command names to their implementation.
var commands = map[string]commandFunc{
	"html":  runHTML,
	"print": runPrint,
	"serve": runServe,
	"config": func(_ context.Context, args []string, env *Environment) error {
		return runConfig(args, env)
	},
	"mime": func(_ context.Context, _ []string, env *Environment) error {
		for _, m := range mdpreview.MIMETypes() {
			fmt.Fprintln(env.Stdout, m)
		}
		return nil
	},
	"completion": func(_ context.Context, args []string, env *Environment) error {
		return runCompletion(args, env)
	},
}

// runMain dispatches argv and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	name, rest := args[1], args[2:]
	switch name {
	case "help", "-h", "--help":
		return runHelp(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "mdpreview %s\n", Version)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", name)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err := cmd(ctx, rest, env); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
