package texsnip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-texsnip/internal/fileutil"
	"github.com/alnah/go-texsnip/internal/pipeline"
	"github.com/alnah/go-texsnip/internal/workspace"
)

// Compile-time interface implementation checks.
var (
	_ Compiler      = (*pipeline.LatexCompiler)(nil)
	_ Rasterizer    = (*pipeline.DvipngRasterizer)(nil)
	_ PostProcessor = (*pipeline.MagickPostProcessor)(nil)
	_ CommandRunner = (*pipeline.ExecRunner)(nil)
)

// Converter runs the expression-to-PNG pipeline.
// A Converter holds no per-run state; with UniqueNaming it may be shared
// by concurrent callers.
type Converter struct {
	cfg           converterConfig
	ws            *workspace.Workspace
	compiler      Compiler
	rasterizer    Rasterizer
	postProcessor PostProcessor
	logger        zerolog.Logger
	progress      func(Stage)
}

// NewConverter creates a Converter with default configuration.
// Stages not replaced by an option spawn latex, dvipng and magick.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{logger: zerolog.Nop()}

	for _, opt := range opts {
		opt(c)
	}

	runner := c.cfg.runner
	if runner == nil {
		runner = &pipeline.ExecRunner{}
	}
	if c.compiler == nil {
		c.compiler = pipeline.NewLatexCompiler(runner, c.cfg.tools.Latex)
	}
	if c.rasterizer == nil {
		c.rasterizer = pipeline.NewDvipngRasterizer(runner, c.cfg.tools.Dvipng)
	}
	if c.postProcessor == nil {
		c.postProcessor = pipeline.NewMagickPostProcessor(runner, c.cfg.tools.Magick)
	}

	c.ws = workspace.New(c.cfg.scratchDir, c.cfg.naming)
	return c
}

// ScratchDir returns the directory runs write to.
func (c *Converter) ScratchDir() string {
	return c.ws.Dir()
}

// step is one external tool stage and the file it must leave behind.
type step struct {
	stage  Stage
	output func(Files) string
	run    func(context.Context, Files) error
}

func (c *Converter) steps() []step {
	return []step{
		{StageTypeset, func(f Files) string { return f.Intermediate }, c.compiler.Compile},
		{StageRasterize, func(f Files) string { return f.Raster }, c.rasterizer.Rasterize},
		{StagePostProcess, func(f Files) string { return f.Result }, c.postProcessor.PostProcess},
	}
}

// Convert reads the expression to EOF and produces the result image.
// The context is used for cancellation and, with WithTimeout, a deadline.
// On any failure, a recovered panic included, the run's scratch files are
// removed before returning.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	var resolved *Files // set once the run's files are known
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
			if resolved != nil {
				c.clean(c.logger, *resolved)
			}
		}
	}()

	if input.Expression == nil {
		return nil, ErrNoInput
	}

	if c.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.timeout)
		defer cancel()
	}

	start := time.Now()

	if err := c.ws.Ensure(); err != nil {
		return nil, err
	}
	files := c.ws.NewRun()
	resolved = &files
	log := c.logger.With().Str("dir", files.Dir).Logger()

	// Files from an earlier run must not pass for this run's output.
	c.clean(log, files)

	res := &Result{Files: files}

	c.report(StageTemplate)
	stageStart := time.Now()
	n, err := pipeline.WriteSource(files.Path(files.Source), input.Expression)
	if err != nil {
		c.clean(log, files)
		return nil, err
	}
	res.Stages = append(res.Stages, StageTiming{Stage: StageTemplate, Duration: time.Since(stageStart)})
	log.Debug().Str("stage", string(StageTemplate)).Int("bytes", n).Str("file", files.Source).Msg("source written")

	for _, s := range c.steps() {
		if err := c.runStep(ctx, log, s, files, res); err != nil {
			c.clean(log, files)
			return nil, err
		}
	}

	res.Path = files.Path(files.Result)
	res.Duration = time.Since(start)
	log.Debug().Dur("duration", res.Duration).Str("result", res.Path).Msg("conversion finished")
	return res, nil
}

// runStep runs one tool stage and checks it left its output behind.
// Every failure comes back as a *StageError.
func (c *Converter) runStep(ctx context.Context, log zerolog.Logger, s step, files Files, res *Result) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: s.stage, ExitCode: -1, Err: err}
	}

	c.report(s.stage)
	log.Debug().Str("stage", string(s.stage)).Msg("stage started")
	stageStart := time.Now()

	err := s.run(ctx, files)
	if err == nil && !fileutil.FileExists(files.Path(s.output(files))) {
		err = &StageError{Stage: s.stage, Err: fmt.Errorf("%w: %s", ErrMissingOutput, s.output(files))}
	}
	if err != nil {
		var stageErr *StageError
		if !errors.As(err, &stageErr) {
			err = &StageError{Stage: s.stage, ExitCode: -1, Err: err}
		}
		log.Debug().Str("stage", string(s.stage)).Err(err).Msg("stage failed")
		return err
	}

	elapsed := time.Since(stageStart)
	res.Stages = append(res.Stages, StageTiming{Stage: s.stage, Duration: elapsed})
	log.Debug().Str("stage", string(s.stage)).Dur("duration", elapsed).Msg("stage finished")
	return nil
}

// clean removes the run's files. Failures are logged, never returned.
func (c *Converter) clean(log zerolog.Logger, files Files) {
	if err := workspace.Clean(files); err != nil {
		log.Warn().Err(err).Msg("could not remove scratch files")
	}
}

func (c *Converter) report(s Stage) {
	if c.progress != nil {
		c.progress(s)
	}
}
