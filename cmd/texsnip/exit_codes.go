package main

import (
	"context"
	"errors"
	"os"

	"github.com/alnah/go-texsnip"
	"github.com/alnah/go-texsnip/internal/config"
	"github.com/alnah/go-texsnip/internal/logging"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// Exit codes for texsnip CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess     = 0 // Result image written
	ExitGeneral     = 1 // General/unexpected error
	ExitUsage       = 2 // Invalid flags, config, or validation
	ExitIO          = 3 // Scratch dir, stdin, files, tool not startable
	ExitTool        = 4 // latex, dvipng or magick failed
	ExitInterrupted = 5 // Signal or timeout
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Interrupted (exit 5): checked first, a killed tool also reports a stage failure
	if errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ExitInterrupted
	}

	// Spawn failures are I/O (exit 3), checked before the stage sentinels they carry
	if errors.Is(err, texsnip.ErrToolNotFound) {
		return ExitIO
	}

	// Tool errors (exit 4)
	if errors.Is(err, texsnip.ErrTypeset) ||
		errors.Is(err, texsnip.ErrRasterize) ||
		errors.Is(err, texsnip.ErrPostProcess) ||
		errors.Is(err, texsnip.ErrMissingOutput) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, texsnip.ErrWorkspace) ||
		errors.Is(err, texsnip.ErrReadInput) ||
		errors.Is(err, texsnip.ErrWriteSource) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrEnvFile) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, workspace.ErrUnknownNaming) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
