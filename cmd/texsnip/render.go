package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-texsnip"
	"github.com/alnah/go-texsnip/internal/config"
	"github.com/alnah/go-texsnip/internal/fileutil"
	"github.com/alnah/go-texsnip/internal/hints"
	"github.com/alnah/go-texsnip/internal/logging"
	"github.com/alnah/go-texsnip/internal/pipeline"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// ErrWriteOutput is returned when the result cannot be copied to --output.
var ErrWriteOutput = errors.New("failed to write output image")

const (
	outputPermissions = 0o644 // rw-r--r--: owner read+write, others read
	stdoutOutput      = "-"
	toolOutputLines   = 20 // tail of tool output printed on failure
)

// runRender reads an expression from stdin and renders it.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseRenderFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printRenderUsage(env.Stdout)
		return nil
	}
	if err != nil {
		return err
	}

	cfg, unknownVars, err := resolveConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg, flags.common, env)
	if err != nil {
		return err
	}
	warnUnknownEnvVars(log, unknownVars)
	log.Debug().
		Str("scratchDir", cfg.ScratchDir).
		Str("naming", cfg.Naming).
		Str("timeout", cfg.Timeout).
		Str("output", cfg.Output).
		Msg("configuration resolved")

	prog := newProgress(env.Terminal, !flags.common.quiet && !flags.common.verbose)
	defer prog.Stop()

	conv, err := newConverter(cfg, flags.common.verbose, env, log, prog.Update)
	if err != nil {
		return err
	}

	res, err := conv.Convert(ctx, texsnip.Input{Expression: env.Stdin})
	prog.Stop()
	if err != nil {
		if !flags.common.verbose {
			printToolOutput(env.Stderr, err)
		}
		return err
	}

	if err := writeOutput(res.Path, cfg.Output, env.Stdout); err != nil {
		return err
	}

	log.Info().Str("path", res.Path).Dur("duration", res.Duration).Msg("created")
	for _, st := range res.Stages {
		log.Debug().Str("stage", string(st.Stage)).Dur("duration", st.Duration).Msg("timing")
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}
	if flags.scratchDir != "" {
		cfg.ScratchDir = flags.scratchDir
	}
	if flags.naming != "" {
		cfg.Naming = flags.naming
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
}

// newLogger builds the stderr logger from the verbosity flags and log format.
func newLogger(cfg *config.Config, common commonFlags, env *Environment) (zerolog.Logger, error) {
	format, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return zerolog.Nop(), err
	}
	return logging.New(logging.Options{
		Level:   logging.LevelFor(common.quiet, common.verbose),
		Format:  format,
		Output:  env.Stderr,
		NoColor: env.Terminal == nil,
	}), nil
}

// newConverter maps the resolved config onto converter options.
func newConverter(cfg *config.Config, verbose bool, env *Environment, log zerolog.Logger, progress func(texsnip.Stage)) (*texsnip.Converter, error) {
	naming, err := workspace.ParseNaming(cfg.Naming)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	runner := env.Runner
	if runner == nil {
		execRunner := &pipeline.ExecRunner{}
		if verbose {
			execRunner.Stream = env.Stderr
		}
		runner = execRunner
	}

	return texsnip.NewConverter(
		texsnip.WithScratchDir(cfg.ScratchDir),
		texsnip.WithNaming(naming),
		texsnip.WithTimeout(timeout),
		texsnip.WithTools(texsnip.Tools{
			Latex:  cfg.Tools.Latex,
			Dvipng: cfg.Tools.Dvipng,
			Magick: cfg.Tools.Magick,
		}),
		texsnip.WithRunner(runner),
		texsnip.WithLogger(log),
		texsnip.WithProgress(progress),
	), nil
}

// writeOutput copies the result to dest, or streams it to stdout for "-".
// An empty dest leaves the result in the scratch directory only.
func writeOutput(resultPath, dest string, stdout io.Writer) error {
	switch dest {
	case "":
		return nil
	case stdoutOutput:
		f, err := os.Open(resultPath) // #nosec G304 -- path comes from the workspace
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(stdout, f); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWriteOutput, err)
		}
		return nil
	default:
		if err := fileutil.CopyFile(resultPath, dest, outputPermissions); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWriteOutput, dest, err)
		}
		return nil
	}
}

// printToolOutput prints the last lines a failed tool wrote.
func printToolOutput(w io.Writer, err error) {
	var stageErr *texsnip.StageError
	if !errors.As(err, &stageErr) {
		return
	}
	out := strings.TrimRight(stageErr.Output, "\n")
	if out == "" {
		return
	}
	lines := strings.Split(out, "\n")
	if len(lines) > toolOutputLines {
		lines = lines[len(lines)-toolOutputLines:]
	}
	fmt.Fprintf(w, "%s output:\n", stageErr.Tool)
	for _, line := range lines {
		fmt.Fprintf(w, "  | %s\n", line)
	}
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var stageErr *texsnip.StageError
	isStage := errors.As(err, &stageErr)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, texsnip.ErrToolNotFound) && isStage:
		return hints.ForToolNotFound(filepath.Base(stageErr.Tool))
	case errors.Is(err, texsnip.ErrTypeset) && isStage:
		return hints.ForTypesetFailure(stageErr.LogFile)
	case errors.Is(err, texsnip.ErrWorkspace):
		return hints.ForScratchDir()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("texsnip"))
	case errors.Is(err, ErrInvalidFlags):
		return hints.ForUsage("")
	default:
		return ""
	}
}
