package main

import (
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/alnah/go-texsnip"
)

// stageLabels are shown next to the spinner while a stage runs.
var stageLabels = map[texsnip.Stage]string{
	texsnip.StageTemplate:    "writing LaTeX source",
	texsnip.StageTypeset:     "typesetting (latex)",
	texsnip.StageRasterize:   "rasterizing (dvipng)",
	texsnip.StagePostProcess: "trimming (magick)",
}

// progress draws a spinner on a terminal. A progress without a
// terminal does nothing, so callers never check.
type progress struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
}

// newProgress returns a spinner writing to term. A nil term or
// enabled=false yields a silent progress.
func newProgress(term *os.File, enabled bool) *progress {
	if term == nil || !enabled {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(term))
	return &progress{spinner: s}
}

// Update shows stage, starting the spinner on first use.
func (p *progress) Update(stage texsnip.Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil {
		return
	}

	label, ok := stageLabels[stage]
	if !ok {
		label = string(stage)
	}
	p.spinner.Lock()
	p.spinner.Suffix = " " + label
	p.spinner.Unlock()

	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

// Stop clears the spinner line. Safe to call more than once.
func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}
