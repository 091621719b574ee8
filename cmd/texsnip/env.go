package main

import (
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/alnah/go-texsnip/internal/pipeline"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, environment variables and the process layer.
type Environment struct {
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
	Environ  func() []string
	LookPath func(string) (string, error)
	Runner   pipeline.CommandRunner // nil runs the real tools
	Terminal *os.File               // stderr when it is a terminal, else nil
	Color    bool                   // stdout accepts ANSI colors
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	env := &Environment{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Environ:  os.Environ,
		LookPath: exec.LookPath,
		Color:    !color.NoColor,
	}
	if fd := os.Stderr.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		env.Terminal = os.Stderr
	}
	return env
}
