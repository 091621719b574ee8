// Package pipeline implements the stages of an expression-to-PNG conversion.
//
// The stages run in a fixed order:
//   - Template writing (expression wrapped in a minimal LaTeX document)
//   - Typesetting via latex (LaTeX source to DVI)
//   - Rasterization via dvipng (DVI to PNG at 512 DPI)
//   - Post-processing via ImageMagick (trim, repage, 64px white border)
//
// Each external stage sits behind a small interface with one exec-backed
// implementation. Argument lists are fixed; only the binary can be swapped.
// Sequencing, cleanup and timing live in the root texsnip package.
package pipeline
