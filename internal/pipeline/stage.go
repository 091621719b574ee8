package pipeline

import (
	"errors"
	"fmt"
)

// Stage names a step of the conversion.
type Stage string

const (
	StageTemplate    Stage = "template"
	StageTypeset     Stage = "typeset"
	StageRasterize   Stage = "rasterize"
	StagePostProcess Stage = "postprocess"
)

// Sentinel errors for pipeline stages.
var (
	ErrReadInput      = errors.New("failed to read expression")
	ErrWriteSource    = errors.New("failed to write LaTeX source")
	ErrTypeset        = errors.New("typesetting failed")
	ErrRasterize      = errors.New("rasterization failed")
	ErrPostProcess    = errors.New("post-processing failed")
	ErrToolNotFound   = errors.New("tool could not be started")
	ErrMissingOutput  = errors.New("tool reported success but wrote no output")
	errUnknownFailure = errors.New("stage failed")
)

// StageError reports an external tool failure.
// errors.Is matches it against the stage's sentinel (ErrTypeset, ...).
type StageError struct {
	Stage    Stage
	Tool     string
	ExitCode int    // -1 when the tool did not exit normally
	Output   string // tail of the tool's combined stdout/stderr
	LogFile  string // transcript the tool leaves for diagnosis, if any
	Err      error
}

func (e *StageError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed (%s): %v", e.Stage, e.Tool, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of e's stage.
func (e *StageError) Is(target error) bool {
	return target == SentinelFor(e.Stage)
}

// SentinelFor returns the sentinel error matched by a StageError of stage s.
func SentinelFor(s Stage) error {
	switch s {
	case StageTypeset:
		return ErrTypeset
	case StageRasterize:
		return ErrRasterize
	case StagePostProcess:
		return ErrPostProcess
	default:
		return errUnknownFailure
	}
}
