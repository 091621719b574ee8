package workspace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownNaming is returned by ParseNaming for an unknown mode.
var ErrUnknownNaming = errors.New("unknown naming mode")

// Base names of the scratch files.
const (
	SourceName       = "input.tex"
	IntermediateName = "input.dvi"
	RasterName       = "out.png"
	ResultName       = "result.png"
)

// Naming decides the scratch file names of one run.
type Naming interface {
	Files(dir string) Files
}

// FixedNaming uses the same four names on every run.
// Concurrent runs sharing a directory overwrite each other.
type FixedNaming struct{}

// Files returns the fixed names rooted at dir.
func (FixedNaming) Files(dir string) Files {
	return prefixed(dir, "")
}

// UniqueNaming prefixes every name with a fresh run ID so concurrent runs
// in one scratch directory never collide.
type UniqueNaming struct {
	// NewID returns the prefix for a run. Defaults to a random UUID.
	NewID func() string
}

// Files returns names prefixed with a new run ID.
func (n UniqueNaming) Files(dir string) Files {
	newID := n.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return prefixed(dir, newID()+"-")
}

// prefixed keeps the DVI name derived from the source name: latex names its
// output after the job, which is the source file name without ".tex".
func prefixed(dir, prefix string) Files {
	source := prefix + SourceName
	return Files{
		Dir:          dir,
		Source:       source,
		Intermediate: strings.TrimSuffix(source, ".tex") + ".dvi",
		Raster:       prefix + RasterName,
		Result:       prefix + ResultName,
	}
}

// ParseNaming maps "fixed" (or empty) and "unique" to a Naming.
func ParseNaming(mode string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "fixed":
		return FixedNaming{}, nil
	case "unique":
		return UniqueNaming{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be fixed or unique)", ErrUnknownNaming, mode)
	}
}
