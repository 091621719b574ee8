// Package logging builds the zerolog loggers used by the CLI and library.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidFormat is returned for an unknown log format name.
var ErrInvalidFormat = errors.New("invalid log format")

// Format selects how log events are rendered.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Options configures New.
type Options struct {
	Level   zerolog.Level
	Format  Format
	Output  io.Writer // defaults to os.Stderr
	NoColor bool
}

// ParseFormat accepts "console" or "json" (case-insensitive). Empty means console.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatConsole:
		return FormatConsole, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (must be console or json)", ErrInvalidFormat, s)
	}
}

// LevelFor maps the CLI verbosity switches to a level. Quiet wins over verbose.
func LevelFor(quiet, verbose bool) zerolog.Level {
	switch {
	case quiet:
		return zerolog.ErrorLevel
	case verbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing to opts.Output. The level is set on the
// logger itself, never on the zerolog global, so tests can build many.
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var zl zerolog.Logger
	if opts.Format == FormatJSON {
		zl = zerolog.New(out).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    opts.NoColor,
			TimeFormat: time.TimeOnly,
		}).With().Timestamp().Logger()
	}

	return zl.Level(opts.Level)
}
