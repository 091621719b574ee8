package texsnip

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-texsnip/internal/pipeline"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// Input contains conversion parameters.
type Input struct {
	Expression io.Reader // raw LaTeX math, read to EOF (required)
}

// Result describes a successful conversion.
type Result struct {
	Path     string        // absolute path of the result image
	Files    Files         // scratch files of the run
	Stages   []StageTiming // in execution order, template first
	Duration time.Duration // whole run, including cleanup
}

// StageTiming records how long one stage took.
type StageTiming struct {
	Stage    Stage
	Duration time.Duration
}

// Files names the scratch files of one run.
type Files = workspace.Files

// Naming decides scratch file names per run.
type Naming = workspace.Naming

// FixedNaming uses input.tex, input.dvi, out.png and result.png every run.
type FixedNaming = workspace.FixedNaming

// UniqueNaming prefixes every scratch file with a random run ID.
type UniqueNaming = workspace.UniqueNaming

// Stage names a conversion step.
type Stage = pipeline.Stage

// Conversion stages, in execution order.
const (
	StageTemplate    = pipeline.StageTemplate
	StageTypeset     = pipeline.StageTypeset
	StageRasterize   = pipeline.StageRasterize
	StagePostProcess = pipeline.StagePostProcess
)

// StageError reports an external tool failure.
type StageError = pipeline.StageError

// Compiler typesets the source document into a DVI file.
type Compiler = pipeline.Compiler

// Rasterizer renders the DVI file into a PNG.
type Rasterizer = pipeline.Rasterizer

// PostProcessor trims the PNG and writes the result image.
type PostProcessor = pipeline.PostProcessor

// CommandRunner starts external tools.
type CommandRunner = pipeline.CommandRunner

// Tools overrides the tool binaries. Empty fields keep the PATH defaults.
type Tools struct {
	Latex  string
	Dvipng string
	Magick string
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	scratchDir string
	naming     Naming
	timeout    time.Duration // zero disables the deadline
	runner     CommandRunner
	tools      Tools
}

// WithScratchDir sets the scratch directory. Empty keeps <temp>/texsnip.
func WithScratchDir(dir string) Option {
	return func(c *Converter) {
		c.cfg.scratchDir = dir
	}
}

// WithNaming sets the scratch file naming policy.
func WithNaming(n Naming) Option {
	return func(c *Converter) {
		c.cfg.naming = n
	}
}

// WithTimeout bounds a whole conversion. Zero disables the deadline.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d < 0 {
		panic("texsnip: WithTimeout duration must not be negative")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger for stage events. Defaults to a disabled logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithRunner replaces the process layer used by the built-in stages.
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) {
		c.cfg.runner = r
	}
}

// WithTools overrides the binaries used by the built-in stages.
func WithTools(t Tools) Option {
	return func(c *Converter) {
		c.cfg.tools = t
	}
}

// WithCompiler replaces the typesetting stage.
func WithCompiler(s Compiler) Option {
	return func(c *Converter) {
		c.compiler = s
	}
}

// WithRasterizer replaces the rasterization stage.
func WithRasterizer(s Rasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = s
	}
}

// WithPostProcessor replaces the post-processing stage.
func WithPostProcessor(s PostProcessor) Option {
	return func(c *Converter) {
		c.postProcessor = s
	}
}

// WithProgress registers fn to be called as each stage starts.
func WithProgress(fn func(Stage)) Option {
	return func(c *Converter) {
		c.progress = fn
	}
}
