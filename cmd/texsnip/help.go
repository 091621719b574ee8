package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texsnip [command] [flags] < expression.tex")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a LaTeX math expression read from stdin into a trimmed PNG.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render       Render stdin to result.png (default)")
	fmt.Fprintln(w, "  doctor       Check latex, dvipng, magick and the scratch directory")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'texsnip help <command>' for details on a specific command.")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texsnip [render] [flags] < expression.tex")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Wrap the expression in a display-math LaTeX document, then run")
	fmt.Fprintln(w, "latex, dvipng (512 DPI) and magick (trim, 64px white border).")
	fmt.Fprintln(w, "The image is written to <temp>/texsnip/result.png.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  echo 'x^2 + y^2 = z^2' | texsnip -o pythagoras.png")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Also copy result.png here (- = stdout)")
	fmt.Fprintln(w, "      --scratch-dir <dir>   Scratch directory (default <temp>/texsnip)")
	fmt.Fprintln(w, "      --naming <mode>       Scratch file names: fixed, unique")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Abort after this duration (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Load TEXSNIP_* variables from a dotenv file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show tool output and stage timing")
	fmt.Fprintln(w, "      --log-format <f>      Log format: console, json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TEXSNIP_CONFIG, TEXSNIP_SCRATCH_DIR, TEXSNIP_TIMEOUT, TEXSNIP_NAMING,")
	fmt.Fprintln(w, "  TEXSNIP_LOG_FORMAT, TEXSNIP_LATEX, TEXSNIP_DVIPNG, TEXSNIP_MAGICK")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general, 2 usage, 3 I/O, 4 tool failure, 5 interrupted")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: texsnip doctor [--json] [-c config] [--env-file path]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that latex, dvipng and magick can be found and report their")
	fmt.Fprintln(w, "versions, and that the scratch directory is writable.")
	fmt.Fprintln(w, "Exits 1 when a check fails.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: texsnip version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: texsnip help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
