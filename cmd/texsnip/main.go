package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ErrUnknownCommand is returned for a command name runMain does not know.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches to a command and returns the process exit code.
// With no command, texsnip renders stdin.
func runMain(args []string, env *Environment) int {
	cmd, rest := splitCommand(args[1:])

	switch cmd {
	case "render":
		ctx, stop := notifyContext(context.Background())
		defer stop()
		return reportError(env, runRender(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "texsnip %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "completion":
		return reportError(env, runCompletion(rest, env))
	default:
		fmt.Fprintf(env.Stderr, "%v: %s\n\n", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// splitCommand returns the command name and its arguments.
// No arguments, or a leading flag, selects render.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "render", args
	}
	return args[0], args[1:]
}

// reportError prints err with its hint and returns the matching exit code.
func reportError(env *Environment, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	return exitCodeFor(err)
}
