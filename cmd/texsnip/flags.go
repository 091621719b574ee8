package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlags wraps flag parsing failures.
var ErrInvalidFlags = errors.New("invalid flags")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	envFile string
	quiet   bool
	verbose bool
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	output     string
	timeout    string
	scratchDir string
	naming     string
	logFormat  string
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	json   bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", "", "load TEXSNIP_* variables from a dotenv file")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show tool output and stage timing")
}

// addRenderFlags adds the render flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "also copy result.png to this path (- = stdout)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "abort after this duration (e.g., 30s, 2m)")
	fs.StringVar(&f.scratchDir, "scratch-dir", "", "scratch directory (default <temp>/texsnip)")
	fs.StringVar(&f.naming, "naming", "", "scratch file names: fixed, unique")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console, json")
	addCommonFlags(fs, &f.common)
}

// buildRenderFlagSet creates the render FlagSet bound to f.
// Shared by parseRenderFlags and completion generation.
func buildRenderFlagSet(f *renderFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	addRenderFlags(fs, f)
	return fs
}

// buildDoctorFlagSet creates the doctor FlagSet bound to f.
func buildDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	addCommonFlags(fs, &f.common)
	return fs
}

// parseFlagSet parses args, returning flag.ErrHelp unwrapped for -h/--help.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidFlags, err)
}

// parseRenderFlags parses render command flags. Render takes no positional
// arguments; the expression is read from stdin.
func parseRenderFlags(args []string) (*renderFlags, error) {
	f := &renderFlags{}
	fs := buildRenderFlagSet(f)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q (the expression is read from stdin)", ErrInvalidFlags, fs.Arg(0))
	}
	return f, nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := buildDoctorFlagSet(f)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, fs.Arg(0))
	}
	return f, nil
}
