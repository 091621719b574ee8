package pipeline

import (
	"fmt"
	"io"
	"os"
)

// Preamble opens the document: article class, AMS packages, bold math, and
// preview in tightpage mode so the page box hugs the equation.
const Preamble = `
\documentclass{article}
\usepackage{amsmath}
\usepackage{amsthm}
\usepackage{amssymb}
\usepackage{bm}
\usepackage[active,displaymath,textmath,tightpage]{preview}
\pagestyle{empty}
\begin{document}
\begin{equation*}
`

// Closer ends the equation and the document.
const Closer = `\end{equation*}
\end{document}
`

const sourcePermissions = 0o644 // rw-r--r--: owner read+write, others read

// RenderSource returns Preamble ++ body ++ Closer. The body is not inspected.
func RenderSource(body []byte) []byte {
	doc := make([]byte, 0, len(Preamble)+len(body)+len(Closer))
	doc = append(doc, Preamble...)
	doc = append(doc, body...)
	doc = append(doc, Closer...)
	return doc
}

// WriteSource reads all of r and writes the wrapped document to path,
// truncating any previous content. It returns the number of expression bytes read.
func WriteSource(path string, r io.Reader) (int, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourcePermissions) // #nosec G304 -- path comes from the workspace
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteSource, err)
	}
	if _, err := f.Write(RenderSource(body)); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("%w: %w", ErrWriteSource, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWriteSource, err)
	}

	return len(body), nil
}
