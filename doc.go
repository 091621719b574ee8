// Package texsnip renders a LaTeX math expression into a trimmed PNG image.
//
// # Quick Start
//
// Create a converter and feed it an expression:
//
//	conv := texsnip.NewConverter()
//
//	result, err := conv.Convert(ctx, texsnip.Input{
//	    Expression: strings.NewReader(`x^2 + y^2 = z^2`),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Path) // <temp>/texsnip/result.png
//
// The image stays in the scratch directory. Result.Files lists every
// scratch file of the run and Result.Stages the time spent per stage.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Template: the expression is wrapped in a minimal LaTeX document
//     (article class, AMS packages, preview in tightpage mode)
//  2. Typeset: latex -halt-on-error -interaction batchmode
//  3. Rasterize: dvipng at 512 DPI, zlib level 9
//  4. Post-process: magick convert -trim +repage with a 64px white border
//
// The expression is never parsed or validated; LaTeX reports errors.
// Stale files are removed before a run and every scratch file is removed
// again when any stage fails, so result.png exists only after a full success.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv := texsnip.NewConverter(
//	    texsnip.WithScratchDir("/var/tmp/snips"),
//	    texsnip.WithNaming(texsnip.UniqueNaming{}),
//	    texsnip.WithTimeout(time.Minute),
//	    texsnip.WithTools(texsnip.Tools{Magick: "/opt/im7/bin/magick"}),
//	)
//
// FixedNaming (the default) reuses input.tex, input.dvi, out.png and
// result.png on every run; two processes sharing a scratch directory
// will clobber each other. UniqueNaming prefixes every name with a
// random run ID.
//
// # Error Handling
//
// Stage failures are returned as *StageError and match the stage sentinel:
//
//	_, err := conv.Convert(ctx, input)
//	var stageErr *texsnip.StageError
//	if errors.As(err, &stageErr) {
//	    fmt.Println(stageErr.Stage, stageErr.ExitCode)
//	    fmt.Println(stageErr.Output) // tail of the tool output
//	}
//	if errors.Is(err, texsnip.ErrTypeset) {
//	    // LaTeX rejected the expression
//	}
//
// Available sentinels:
//   - ErrNoInput: Input.Expression is nil
//   - ErrWorkspace: scratch directory could not be created
//   - ErrReadInput, ErrWriteSource: template stage I/O
//   - ErrTypeset, ErrRasterize, ErrPostProcess: tool failures
//   - ErrToolNotFound: a tool binary could not be started
//   - ErrMissingOutput: a tool succeeded without writing its file
//
// # Testing
//
// The three tool stages are interfaces. Replace them with WithCompiler,
// WithRasterizer and WithPostProcessor, or keep the real stages and swap
// the process layer with WithRunner.
package texsnip
