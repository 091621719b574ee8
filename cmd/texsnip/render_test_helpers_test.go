package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

// fakePNG is what the fake magick writes as the result image.
var fakePNG = []byte("\x89PNG\r\n\x1a\nfake image data")

// fakeToolRunner stands in for latex, dvipng and magick. Successful runs
// write the file the real tool would leave behind.
type fakeToolRunner struct {
	mu     sync.Mutex
	calls  []string         // tool base names
	paths  []string         // binaries as invoked
	fail   map[string]error // keyed by tool base name
	output string           // returned with a failure
}

func (r *fakeToolRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	tool := filepath.Base(name)

	r.mu.Lock()
	r.calls = append(r.calls, tool)
	r.paths = append(r.paths, name)
	failErr := r.fail[tool]
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failErr != nil {
		return []byte(r.output), failErr
	}

	for _, a := range args {
		if a == "--version" || a == "-version" {
			return []byte("\n" + tool + " 1.0 (fake)\nsecond line\n"), nil
		}
	}

	var out string
	content := []byte(tool)
	switch tool {
	case "latex":
		out = strings.TrimSuffix(args[len(args)-1], ".tex") + ".dvi"
	case "dvipng":
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				out = args[i+1]
			}
		}
	case "magick":
		out = args[len(args)-1]
		content = fakePNG
	}
	if out != "" {
		if err := os.WriteFile(filepath.Join(dir, out), content, 0o600); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *fakeToolRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *fakeToolRunner) Binaries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// testEnv is an Environment wired to buffers, a variable map and fake tools.
type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	runner  *fakeToolRunner
	vars    map[string]string
	scratch string
}

// newTestEnv returns an environment whose scratch directory is a fresh
// temp dir and where every tool is found on a fake PATH.
func newTestEnv(t *testing.T, stdin string) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		runner:  &fakeToolRunner{fail: map[string]error{}},
		scratch: filepath.Join(t.TempDir(), "texsnip"),
	}
	te.vars = map[string]string{"TEXSNIP_SCRATCH_DIR": te.scratch}

	te.Environment = &Environment{
		Stdin:  strings.NewReader(stdin),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return te.vars[k] },
		Environ: func() []string {
			list := make([]string, 0, len(te.vars))
			for k, v := range te.vars {
				list = append(list, k+"="+v)
			}
			sort.Strings(list)
			return list
		},
		LookPath: func(name string) (string, error) {
			return "/usr/bin/" + filepath.Base(name), nil
		},
		Runner: te.runner,
	}
	return te
}

// lookPathWithout returns a LookPath that fails for the given names.
func lookPathWithout(missing ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, m := range missing {
			if name == m {
				return "", errors.New("executable file not found in $PATH")
			}
		}
		return "/usr/bin/" + name, nil
	}
}
