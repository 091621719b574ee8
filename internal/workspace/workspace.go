// Package workspace owns the scratch directory a conversion runs in.
//
// Every path it hands out is absolute, and tools are started with their
// working directory set per process, so nothing here changes the
// working directory of the calling process.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-texsnip/internal/fileutil"
)

// ErrWorkspace wraps failures to create or use the scratch directory.
var ErrWorkspace = errors.New("scratch directory unavailable")

// DirName is the scratch subdirectory under the system temp root.
const DirName = "texsnip"

const dirPermissions = 0o750 // rwxr-x---: owner full, group read+execute

// Files names the scratch files of one run. Names are base names; use
// Path to get an absolute path.
type Files struct {
	Dir          string
	Source       string // LaTeX document
	Intermediate string // DVI written by the typesetting stage
	Raster       string // PNG written by the rasterization stage
	Result       string // trimmed, bordered PNG
}

// Path joins name onto the scratch directory.
func (f Files) Path(name string) string {
	return filepath.Join(f.Dir, name)
}

// Names lists the files removed by Clean, in pipeline order.
func (f Files) Names() []string {
	return []string{f.Source, f.Intermediate, f.Raster, f.Result}
}

// LogPath is the transcript latex writes next to the source. It is not
// part of the cleaned set so it can still be read after a failure.
func (f Files) LogPath() string {
	return f.Path(trimExt(f.Source) + ".log")
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// DefaultDir returns <temp-root>/texsnip.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DirName)
}

// Workspace is a scratch directory plus the naming policy for its files.
type Workspace struct {
	dir    string
	naming Naming
}

// New returns a Workspace rooted at dir. An empty dir selects DefaultDir
// and a nil naming selects FixedNaming. A relative dir is resolved
// against the current directory now; the directory itself is not
// touched until Ensure.
func New(dir string, naming Naming) *Workspace {
	if dir == "" {
		dir = DefaultDir()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if naming == nil {
		naming = FixedNaming{}
	}
	return &Workspace{dir: dir, naming: naming}
}

// Dir returns the absolute scratch directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Ensure creates the scratch directory if it does not exist.
// It is safe to call from concurrent runs.
func (w *Workspace) Ensure() error {
	if !filepath.IsAbs(w.dir) {
		return fmt.Errorf("%w: cannot resolve %s", ErrWorkspace, w.dir)
	}
	if err := os.MkdirAll(w.dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkspace, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrWorkspace, w.dir)
	}
	return nil
}

// NewRun returns the file set for the next conversion.
func (w *Workspace) NewRun() Files {
	return w.naming.Files(w.dir)
}

// Clean removes the run's files, ignoring ones that do not exist.
// Other removal failures are joined and returned for logging; callers
// never abort a run because of them.
func Clean(files Files) error {
	var errs []error
	for _, name := range files.Names() {
		if err := fileutil.RemoveIfExists(files.Path(name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
