package main

import (
	"fmt"

	"github.com/alnah/go-mdpreview/internal/yamlutil"
)

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	f, rest, err := parseCommandFlags("config", args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return usageError("config takes no arguments")
	}
	a, err := newApp(f, env)
	if err != nil {
		return err
	}

	if err := yamlutil.Encode(env.Stdout, a.cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
