package texsnip

import (
	"errors"

	"github.com/alnah/go-texsnip/internal/pipeline"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// Sentinel errors for library operations.
var (
	ErrNoInput = errors.New("expression input cannot be nil")

	// Scratch directory errors.
	ErrWorkspace = workspace.ErrWorkspace

	// Template stage errors.
	ErrReadInput   = pipeline.ErrReadInput
	ErrWriteSource = pipeline.ErrWriteSource

	// Tool stage errors, matched by *StageError.
	ErrTypeset     = pipeline.ErrTypeset
	ErrRasterize   = pipeline.ErrRasterize
	ErrPostProcess = pipeline.ErrPostProcess

	// Process errors.
	ErrToolNotFound  = pipeline.ErrToolNotFound
	ErrMissingOutput = pipeline.ErrMissingOutput
)
