package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Desc     string   // help text
	IsBool   bool     // takes no value
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool     // accepts a markdown file argument
	Args       []string // fixed positional values (shells, command names)
}

// completionMeta holds completion-specific metadata for flags.
// Flag names and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string
	FileGlob string
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"theme":  {Values: []string{"auto", "light", "dark"}},
	"flavor": {Values: []string{"gfm", "gitlab", "mmd"}},
	"config": {FileGlob: "*.yaml,*.yml"},
}

// markdownGlob is offered for the file argument of preview commands.
const markdownGlob = "*.md,*.markdown"

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef
	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:   f.Name,
			Short:  f.Shorthand,
			Desc:   f.Usage,
			IsBool: f.Value.Type() == "bool",
		}
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			fd.Values = meta.Values
			fd.FileGlob = meta.FileGlob
		}
		flags = append(flags, fd)
	})
	return flags
}

// commandFlags returns the flags registered for command.
func commandFlags(command string) []flagDef {
	return extractFlagsFromFlagSet(newFlagSet(command, &cliFlags{}))
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	names := make([]string, 0, len(commandUsage))
	for name := range commandUsage {
		names = append(names, name)
	}
	sort.Strings(names)

	return []commandDef{
		{Name: "html", Desc: "Convert a markdown file to styled HTML", Flags: commandFlags("html"), TakesFiles: true},
		{Name: "print", Desc: "Print a markdown file to PDF", Flags: commandFlags("print"), TakesFiles: true},
		{Name: "serve", Desc: "Live preview in the browser", Flags: commandFlags("serve"), TakesFiles: true},
		{Name: "doctor", Desc: "Check converters and Chrome", Flags: commandFlags("doctor")},
		{Name: "config", Desc: "Show the effective configuration", Flags: commandFlags("config")},
		{Name: "mime", Desc: "List handled MIME types"},
		{Name: "completion", Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: names},
	}
}

// GenerateCompletion writes shell completion script to w.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpreview completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(mdpreview completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(mdpreview completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    mdpreview completion fish > ~/.config/fish/completions/mdpreview.fish")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# bash completion for mdpreview\n")
	b.WriteString("_mdpreview() {\n")
	b.WriteString("  local cur prev cmd\n")
	b.WriteString("  COMPREPLY=()\n")
	b.WriteString("  cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("  prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("  cmd=\"${COMP_WORDS[1]}\"\n\n")

	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	fmt.Fprintf(&b, "  if [[ ${COMP_CWORD} -eq 1 ]]; then\n    COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n    return\n  fi\n\n", strings.Join(names, " "))

	// Values of enum and file flags, whatever the command.
	b.WriteString("  case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.IsBool || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			fmt.Fprintf(&b, "    %s)\n", strings.Join(flagSpellings(f), "|"))
			switch {
			case len(f.Values) > 0:
				fmt.Fprintf(&b, "      COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(f.Values, " "))
			case f.FileGlob != "" || f.Long == "output":
				b.WriteString("      COMPREPLY=( $(compgen -f -- \"$cur\") )\n")
			}
			b.WriteString("      return\n      ;;\n")
		}
	}
	b.WriteString("  esac\n\n")

	b.WriteString("  case \"$cmd\" in\n")
	for _, c := range cmds {
		words := append([]string(nil), c.Args...)
		for _, f := range c.Flags {
			words = append(words, flagSpellings(f)...)
		}
		if len(words) == 0 && !c.TakesFiles {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		if len(words) > 0 {
			fmt.Fprintf(&b, "      COMPREPLY=( $(compgen -W %q -- \"$cur\") )\n", strings.Join(words, " "))
		}
		if c.TakesFiles {
			b.WriteString("      if [[ \"$cur\" != -* ]]; then\n")
			b.WriteString("        COMPREPLY+=( $(compgen -f -- \"$cur\") )\n")
			b.WriteString("      fi\n")
		}
		b.WriteString("      ;;\n")
	}
	b.WriteString("  esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -o filenames -F _mdpreview mdpreview\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// flagSpellings returns "--long" and, when present, "-s".
func flagSpellings(f flagDef) []string {
	out := []string{"--" + f.Long}
	if f.Short != "" {
		out = append(out, "-"+f.Short)
	}
	return out
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

var zshEscaper = strings.NewReplacer("'", "'\\''", "[", "\\[", "]", "\\]", ":", "\\:")

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("#compdef mdpreview\n\n")
	b.WriteString("_mdpreview() {\n")
	b.WriteString("  local -a commands\n")
	b.WriteString("  commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "    '%s:%s'\n", c.Name, zshEscaper.Replace(c.Desc))
	}
	b.WriteString("  )\n\n")
	b.WriteString("  if (( CURRENT == 2 )); then\n")
	b.WriteString("    _describe 'command' commands\n")
	b.WriteString("    return\n")
	b.WriteString("  fi\n\n")
	b.WriteString("  shift words\n")
	b.WriteString("  (( CURRENT-- ))\n\n")
	b.WriteString("  case $words[1] in\n")

	for _, c := range cmds {
		if len(c.Flags) == 0 && len(c.Args) == 0 && !c.TakesFiles {
			continue
		}
		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("      _arguments")
		for _, f := range c.Flags {
			b.WriteString(" \\\n        ")
			b.WriteString(zshFlagSpec(f))
		}
		switch {
		case c.TakesFiles:
			b.WriteString(" \\\n        '1:markdown file:_files -g \"*.(md|markdown)\"'")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, " \\\n        '1:argument:(%s)'", strings.Join(c.Args, " "))
		}
		b.WriteString("\n      ;;\n")
	}
	b.WriteString("  esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _mdpreview mdpreview\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec renders one _arguments spec.
func zshFlagSpec(f flagDef) string {
	desc := zshEscaper.Replace(f.Desc)
	var action string
	switch {
	case f.IsBool:
	case len(f.Values) > 0:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case f.FileGlob != "":
		globs := strings.Split(f.FileGlob, ",")
		for i, g := range globs {
			globs[i] = strings.TrimPrefix(g, "*.")
		}
		action = fmt.Sprintf(":%s:_files -g \"*.(%s)\"", f.Long, strings.Join(globs, "|"))
	default:
		action = fmt.Sprintf(":%s:_files", f.Long)
	}

	if f.Short == "" {
		return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

var fishEscaper = strings.NewReplacer("'", "\\'")

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	b.WriteString("# fish completion for mdpreview\n")
	b.WriteString("complete -c mdpreview -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c mdpreview -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishEscaper.Replace(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.Name)
		if len(c.Flags) > 0 || len(c.Args) > 0 || c.TakesFiles {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c mdpreview -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d '%s'", f.Long, fishEscaper.Replace(f.Desc))
			switch {
			case f.IsBool:
			case len(f.Values) > 0:
				fmt.Fprintf(&b, " -xa '%s'", strings.Join(f.Values, " "))
			default:
				b.WriteString(" -rF")
			}
			b.WriteString("\n")
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c mdpreview -n %s -xa '%s'\n", cond, strings.Join(c.Args, " "))
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c mdpreview -n %s -F\n", cond)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
