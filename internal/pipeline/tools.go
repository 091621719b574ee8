package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"

	"github.com/alnah/go-texsnip/internal/workspace"
)

// Fixed rendering parameters.
const (
	Resolution       = 512 // dvipng -D, dots per inch
	CompressionLevel = 9   // dvipng -z, PNG zlib level
	BorderWidth      = 64  // magick -border, pixels on every side
	BorderColor      = "White"
)

// Default tool binaries, resolved through PATH.
const (
	DefaultLatex  = "latex"
	DefaultDvipng = "dvipng"
	DefaultMagick = "magick"
)

// Compiler typesets files.Source into files.Intermediate.
type Compiler interface {
	Compile(ctx context.Context, files workspace.Files) error
}

// Rasterizer renders files.Intermediate into files.Raster.
type Rasterizer interface {
	Rasterize(ctx context.Context, files workspace.Files) error
}

// PostProcessor trims files.Raster and writes files.Result.
type PostProcessor interface {
	PostProcess(ctx context.Context, files workspace.Files) error
}

// LatexCompiler runs latex in batch mode, halting on the first error.
type LatexCompiler struct {
	Runner CommandRunner
	Binary string // empty = DefaultLatex
}

// NewLatexCompiler creates a LatexCompiler. An empty binary selects DefaultLatex.
func NewLatexCompiler(runner CommandRunner, binary string) *LatexCompiler {
	return &LatexCompiler{Runner: runner, Binary: binary}
}

// Args returns the fixed latex argument list for files.
func (c *LatexCompiler) Args(files workspace.Files) []string {
	return []string{"-halt-on-error", "-interaction", "batchmode", files.Source}
}

// Compile runs latex. A failure carries the path of latex's .log file,
// which is kept when the scratch files are cleaned.
func (c *LatexCompiler) Compile(ctx context.Context, files workspace.Files) error {
	err := runTool(ctx, c.Runner, StageTypeset, orDefault(c.Binary, DefaultLatex), files.Dir, c.Args(files))
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stageErr.LogFile = files.LogPath()
	}
	return err
}

// DvipngRasterizer runs dvipng at Resolution DPI with CompressionLevel.
type DvipngRasterizer struct {
	Runner CommandRunner
	Binary string // empty = DefaultDvipng
}

// NewDvipngRasterizer creates a DvipngRasterizer. An empty binary selects DefaultDvipng.
func NewDvipngRasterizer(runner CommandRunner, binary string) *DvipngRasterizer {
	return &DvipngRasterizer{Runner: runner, Binary: binary}
}

// Args returns the fixed dvipng argument list for files.
func (r *DvipngRasterizer) Args(files workspace.Files) []string {
	return []string{
		"-D", strconv.Itoa(Resolution),
		"-z", strconv.Itoa(CompressionLevel),
		"-o", files.Raster,
		files.Intermediate,
	}
}

func (r *DvipngRasterizer) Rasterize(ctx context.Context, files workspace.Files) error {
	return runTool(ctx, r.Runner, StageRasterize, orDefault(r.Binary, DefaultDvipng), files.Dir, r.Args(files))
}

// MagickPostProcessor trims margins, resets the canvas offset and adds a
// BorderWidth pixel BorderColor border.
type MagickPostProcessor struct {
	Runner CommandRunner
	Binary string // empty = DefaultMagick
}

// NewMagickPostProcessor creates a MagickPostProcessor. An empty binary selects DefaultMagick.
func NewMagickPostProcessor(runner CommandRunner, binary string) *MagickPostProcessor {
	return &MagickPostProcessor{Runner: runner, Binary: binary}
}

// Args returns the fixed magick argument list for files.
func (p *MagickPostProcessor) Args(files workspace.Files) []string {
	border := fmt.Sprintf("%dx%d", BorderWidth, BorderWidth)
	return []string{
		"convert", files.Raster,
		"-trim", "+repage",
		"-bordercolor", BorderColor,
		"-border", border,
		files.Result,
	}
}

func (p *MagickPostProcessor) PostProcess(ctx context.Context, files workspace.Files) error {
	return runTool(ctx, p.Runner, StagePostProcess, orDefault(p.Binary, DefaultMagick), files.Dir, p.Args(files))
}

// runTool runs one tool and turns any failure into a *StageError.
func runTool(ctx context.Context, runner CommandRunner, stage Stage, tool, dir string, args []string) error {
	out, err := runner.Run(ctx, dir, tool, args...)
	if err == nil {
		return nil
	}

	stageErr := &StageError{Stage: stage, Tool: tool, ExitCode: -1, Output: string(out)}

	var exitErr *exec.ExitError
	var execErr *exec.Error
	var pathErr *fs.PathError
	switch {
	case ctx.Err() != nil:
		stageErr.Err = ctx.Err()
	case errors.As(err, &exitErr):
		stageErr.ExitCode = exitErr.ExitCode()
		stageErr.Err = err
	case errors.As(err, &execErr), errors.As(err, &pathErr):
		stageErr.Err = fmt.Errorf("%w: %w", ErrToolNotFound, err)
	default:
		stageErr.Err = err
	}
	return stageErr
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
