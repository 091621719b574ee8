package main

import (
	"errors"
	"fmt"
	"io"
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

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags, comma-separated
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // fixed positional values (shells, command names)
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
	IsFile   bool     // any file
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"naming":     {Values: []string{"fixed", "unique"}},
	"log-format": {Values: []string{"console", "json"}},

	// File flags
	"config":   {FileGlob: "*.yaml,*.yml"},
	"env-file": {IsFile: true},
	"output":   {FileGlob: "*.png"},

	// Directory flags
	"scratch-dir": {IsDir: true},
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}
		if f.Value.Type() == "bool" {
			fd.Type = flagBool
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case meta.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			case meta.IsFile:
				fd.Type = flagFile
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets - single source of truth.
func getCommands() []commandDef {
	commandNames := []string{"render", "doctor", "version", "help", "completion"}
	return []commandDef{
		{
			Name:  "render",
			Desc:  "Render stdin to result.png (default)",
			Flags: extractFlagsFromFlagSet(buildRenderFlagSet(&renderFlags{})),
		},
		{
			Name:  "doctor",
			Desc:  "Check tools and scratch directory",
			Flags: extractFlagsFromFlagSet(buildDoctorFlagSet(&doctorFlags{})),
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
			Args: commandNames,
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)},
		},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w, getCommands())
	case ShellZsh:
		return generateZsh(w, getCommands())
	case ShellFish:
		return generateFish(w, getCommands())
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
	fmt.Fprintln(w, "Usage: texsnip completion <shell>")
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
	fmt.Fprintln(w, "    eval \"$(texsnip completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(texsnip completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    texsnip completion fish > ~/.config/fish/completions/texsnip.fish")
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	names := commandNames(cmds)

	b.WriteString("# bash completion for texsnip\n")
	b.WriteString("_texsnip() {\n")
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n", strings.Join(names, "|"))
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	// Flag values, keyed on the previous word.
	b.WriteString("    case \"$prev\" in\n")
	for _, fd := range uniqueValueFlags(cmds) {
		pattern := "--" + fd.Long
		if fd.Short != "" {
			pattern = "-" + fd.Short + "|" + pattern
		}
		switch fd.Type {
		case flagEnum:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W \"%s\" -- \"$cur\")); return ;;\n",
				pattern, strings.Join(fd.Values, " "))
		case flagFile:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -f -- \"$cur\")); return ;;\n", pattern)
		case flagDir:
			fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
		default:
			fmt.Fprintf(&b, "        %s) return ;;\n", pattern)
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		words := flagWords(c.Flags)
		words = append(words, c.Args...)
		if c.Name == "render" {
			// Render is also the implicit command.
			fmt.Fprintf(&b, "        render|\"\") COMPREPLY=($(compgen -W \"%s\" -- \"$cur\")) ;;\n",
				strings.Join(append(words, names...), " "))
			continue
		}
		fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W \"%s\" -- \"$cur\")) ;;\n",
			c.Name, strings.Join(words, " "))
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _texsnip texsnip\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer, cmds []commandDef) error {
	var b strings.Builder

	b.WriteString("#compdef texsnip\n\n")
	b.WriteString("_texsnip() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")

	var render commandDef
	for _, c := range cmds {
		if c.Name == "render" {
			render = c
		}
	}

	b.WriteString("    if (( CURRENT == 2 )) && [[ ${words[2]} != -* ]]; then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case ${words[2]} in\n")
	for _, c := range cmds {
		if c.Name == "render" {
			continue
		}
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case len(c.Flags) > 0:
			b.WriteString("            _arguments \\\n")
			writeZshSpecs(&b, c.Flags, "                ")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("        *)\n")
	b.WriteString("            _arguments \\\n")
	writeZshSpecs(&b, render.Flags, "                ")
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _texsnip texsnip\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeZshSpecs writes one _arguments spec per flag, continuing lines
// with a backslash except the last.
func writeZshSpecs(b *strings.Builder, flags []flagDef, indent string) {
	for i, fd := range flags {
		b.WriteString(indent)
		b.WriteString(zshSpec(fd))
		if i < len(flags)-1 {
			b.WriteString(" \\")
		}
		b.WriteString("\n")
	}
}

// zshSpec builds an _arguments spec such as
// '(-o --output)'{-o,--output}'[desc]:file:_files -g "*.png"'.
func zshSpec(fd flagDef) string {
	desc := "[" + zshQuote(fd.Desc) + "]"

	var action string
	switch fd.Type {
	case flagBool:
	case flagEnum:
		action = ":" + fd.Long + ":(" + strings.Join(fd.Values, " ") + ")"
	case flagFile:
		if fd.FileGlob != "" {
			globs := strings.ReplaceAll(fd.FileGlob, ",", " ")
			action = ":file:_files -g \"" + globs + "\""
		} else {
			action = ":file:_files"
		}
	case flagDir:
		action = ":directory:_files -/"
	default:
		action = ":" + fd.Long + ":"
	}

	if fd.Short == "" {
		return "'--" + fd.Long + desc + action + "'"
	}
	return "'(-" + fd.Short + " --" + fd.Long + ")'{-" + fd.Short + ",--" + fd.Long + "}'" + desc + action + "'"
}

// zshQuote escapes text for a single-quoted _arguments description.
func zshQuote(s string) string {
	r := strings.NewReplacer(`'`, `'\''`, `[`, `\[`, `]`, `\]`, `:`, `\:`)
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer, cmds []commandDef) error {
	var b strings.Builder
	names := commandNames(cmds)

	b.WriteString("# fish completion for texsnip\n")
	b.WriteString("complete -c texsnip -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c texsnip -n '__fish_use_subcommand' -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}
	b.WriteString("\n")

	others := make([]string, 0, len(names))
	for _, n := range names {
		if n != "render" {
			others = append(others, n)
		}
	}

	for _, c := range cmds {
		cond := "__fish_seen_subcommand_from " + c.Name
		if c.Name == "render" {
			cond = "not __fish_seen_subcommand_from " + strings.Join(others, " ")
		}
		for _, fd := range c.Flags {
			fmt.Fprintf(&b, "complete -c texsnip -n '%s'%s\n", cond, fishFlag(fd))
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c texsnip -n '%s' -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishFlag returns the option part of a fish complete line.
func fishFlag(fd flagDef) string {
	var b strings.Builder
	if fd.Short != "" {
		b.WriteString(" -s " + fd.Short)
	}
	b.WriteString(" -l " + fd.Long)
	switch fd.Type {
	case flagBool:
	case flagEnum:
		b.WriteString(" -x -a '" + strings.Join(fd.Values, " ") + "'")
	case flagFile:
		b.WriteString(" -r -F")
	case flagDir:
		b.WriteString(" -x -a '(__fish_complete_directories)'")
	default:
		b.WriteString(" -x")
	}
	b.WriteString(" -d '" + fishQuote(fd.Desc) + "'")
	return b.String()
}

// fishQuote escapes text for a single-quoted fish string.
func fishQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return r.Replace(s)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func commandNames(cmds []commandDef) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return names
}

// flagWords lists every spelling of flags, long names first.
func flagWords(flags []flagDef) []string {
	words := make([]string, 0, len(flags)*2)
	for _, fd := range flags {
		words = append(words, "--"+fd.Long)
	}
	for _, fd := range flags {
		if fd.Short != "" {
			words = append(words, "-"+fd.Short)
		}
	}
	return words
}

// uniqueValueFlags returns the flags taking a value, once per long name,
// in first-seen order.
func uniqueValueFlags(cmds []commandDef) []flagDef {
	seen := make(map[string]bool)
	var out []flagDef
	for _, c := range cmds {
		for _, fd := range c.Flags {
			if fd.Type == flagBool || seen[fd.Long] {
				continue
			}
			seen[fd.Long] = true
			out = append(out, fd)
		}
	}
	return out
}
