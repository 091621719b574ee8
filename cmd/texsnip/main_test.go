package main

// Notes:
// - runMain: we test dispatch and exit codes through fake tools injected via
//   Environment.Runner. Real latex/dvipng/magick runs live in the library's
//   integration tests.
// - main(): not tested, it only wires DefaultEnv and os.Exit.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestSplitCommand - Command selection
// ---------------------------------------------------------------------------

func TestSplitCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCmd  string
		wantRest []string
	}{
		{"no args renders", nil, "render", nil},
		{"leading flag renders", []string{"-o", "x.png"}, "render", []string{"-o", "x.png"}},
		{"explicit render", []string{"render", "-q"}, "render", []string{"-q"}},
		{"doctor", []string{"doctor", "--json"}, "doctor", []string{"--json"}},
		{"unknown word passes through", []string{"frobnicate"}, "frobnicate", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, rest := splitCommand(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Commands - Dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRunMain_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"version"}, ExitSuccess, "texsnip dev", ""},
		{"help", []string{"help"}, ExitSuccess, "Usage: texsnip", ""},
		{"help render", []string{"help", "render"}, ExitSuccess, "--scratch-dir", ""},
		{"help unknown", []string{"help", "nope"}, ExitUsage, "", "Unknown command: nope"},
		{"unknown command", []string{"frobnicate"}, ExitUsage, "", "unknown command: frobnicate"},
		{"render --help", []string{"--help"}, ExitSuccess, "Usage: texsnip [render]", ""},
		{"bad flag", []string{"--no-such-flag"}, ExitUsage, "", "invalid flags"},
		{"positional argument", []string{"render", "x^2"}, ExitUsage, "", "read from stdin"},
		{"bad naming", []string{"--naming", "random"}, ExitUsage, "", "naming"},
		{"bad timeout", []string{"--timeout", "soon"}, ExitUsage, "", "timeout"},
		{"bad log format", []string{"--log-format", "xml"}, ExitUsage, "", "xml"},
		{"missing config", []string{"-c", "/nonexistent/texsnip.yaml"}, ExitUsage, "", "hint:"},
		{"completion bash", []string{"completion", "bash"}, ExitSuccess, "complete -F _texsnip texsnip", ""},
		{"completion usage", []string{"completion"}, ExitSuccess, "Usage: texsnip completion", ""},
		{"completion bad shell", []string{"completion", "tcsh"}, ExitUsage, "", "unsupported shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, "x^2")
			code := runMain(append([]string{"texsnip"}, tt.args...), te.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, te.stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout should contain %q, got:\n%s", tt.wantStdout, te.stdout.String())
			}
			if tt.wantStderr != "" && !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr should contain %q, got:\n%s", tt.wantStderr, te.stderr.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Render - End-to-end render over fake tools
// ---------------------------------------------------------------------------

func TestRunMain_Render(t *testing.T) {
	t.Parallel()

	t.Run("default run leaves result in scratch dir", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, `\frac{a}{b}`)
		code := runMain([]string{"texsnip"}, te.Environment)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}

		got, err := os.ReadFile(filepath.Join(te.scratch, "result.png"))
		if err != nil {
			t.Fatalf("result.png missing: %v", err)
		}
		if !bytes.Equal(got, fakePNG) {
			t.Errorf("result.png = %q, want fake PNG", got)
		}
		src, err := os.ReadFile(filepath.Join(te.scratch, "input.tex"))
		if err != nil {
			t.Fatalf("input.tex missing: %v", err)
		}
		if !strings.Contains(string(src), `\frac{a}{b}`) {
			t.Errorf("source does not contain expression:\n%s", src)
		}
		if te.stdout.Len() != 0 {
			t.Errorf("stdout should stay empty, got %q", te.stdout.String())
		}
		if !strings.Contains(te.stderr.String(), "created") {
			t.Errorf("stderr should report the result, got %q", te.stderr.String())
		}
		if calls := strings.Join(te.runner.Calls(), ","); calls != "latex,dvipng,magick" {
			t.Errorf("tools = %s, want latex,dvipng,magick", calls)
		}
	})

	t.Run("quiet prints nothing", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "x^2")
		if code := runMain([]string{"texsnip", "-q"}, te.Environment); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if te.stderr.Len() != 0 || te.stdout.Len() != 0 {
			t.Errorf("quiet run wrote stdout=%q stderr=%q", te.stdout.String(), te.stderr.String())
		}
	})

	t.Run("output dash streams PNG to stdout", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "x^2")
		if code := runMain([]string{"texsnip", "-q", "-o", "-"}, te.Environment); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if !bytes.Equal(te.stdout.Bytes(), fakePNG) {
			t.Errorf("stdout = %q, want PNG bytes", te.stdout.Bytes())
		}
	})

	t.Run("output path receives a copy", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "x^2")
		dest := filepath.Join(t.TempDir(), "copy.png")
		if code := runMain([]string{"texsnip", "-q", "--output", dest}, te.Environment); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		got, err := os.ReadFile(dest)
		if err != nil || !bytes.Equal(got, fakePNG) {
			t.Errorf("copy = %q, %v", got, err)
		}
		if _, err := os.Stat(filepath.Join(te.scratch, "result.png")); err != nil {
			t.Errorf("scratch result should remain: %v", err)
		}
	})

	t.Run("unique naming via flag", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "x^2")
		if code := runMain([]string{"texsnip", "-q", "--naming", "unique"}, te.Environment); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		matches, _ := filepath.Glob(filepath.Join(te.scratch, "*-result.png"))
		if len(matches) != 1 {
			t.Errorf("want one prefixed result, got %v", matches)
		}
	})

	t.Run("json logs", func(t *testing.T) {
		t.Parallel()

		te := newTestEnv(t, "x^2")
		if code := runMain([]string{"texsnip", "--log-format", "json"}, te.Environment); code != ExitSuccess {
			t.Fatalf("exit code = %d, stderr: %s", code, te.stderr.String())
		}
		if !strings.Contains(te.stderr.String(), `"message":"created"`) {
			t.Errorf("stderr should hold a JSON event, got %q", te.stderr.String())
		}
	})
}

func TestRunMain_RenderFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tool       string
		err        error
		output     string
		wantCode   int
		wantStderr []string
	}{
		{
			name:     "latex error",
			tool:     "latex",
			err:      errors.New("exit status 1"),
			output:   "! Undefined control sequence.\nl.5 \\foo",
			wantCode: ExitTool,
			wantStderr: []string{
				"typeset stage failed",
				"latex output:",
				"  | ! Undefined control sequence.",
				"input.log",
			},
		},
		{
			name:       "dvipng error",
			tool:       "dvipng",
			err:        errors.New("exit status 1"),
			wantCode:   ExitTool,
			wantStderr: []string{"rasterize stage failed"},
		},
		{
			name:       "magick error",
			tool:       "magick",
			err:        errors.New("exit status 1"),
			wantCode:   ExitTool,
			wantStderr: []string{"postprocess stage failed"},
		},
		{
			name:       "latex missing",
			tool:       "latex",
			err:        &exec.Error{Name: "latex", Err: exec.ErrNotFound},
			wantCode:   ExitIO,
			wantStderr: []string{"could not be started", "TEXSNIP_LATEX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t, "x^2")
			te.runner.fail[tt.tool] = tt.err
			te.runner.output = tt.output

			code := runMain([]string{"texsnip"}, te.Environment)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(te.stderr.String(), want) {
					t.Errorf("stderr should contain %q, got:\n%s", want, te.stderr.String())
				}
			}
			if strings.Count(te.stderr.String(), "output:\n") > 1 {
				t.Errorf("tool output printed twice:\n%s", te.stderr.String())
			}
			if _, err := os.Stat(filepath.Join(te.scratch, "result.png")); !errors.Is(err, os.ErrNotExist) {
				t.Error("result.png must not survive a failed run")
			}
		})
	}
}

func TestRunMain_Timeout(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, "x^2")
	code := runMain([]string{"texsnip", "--timeout", "1ns"}, te.Environment)
	if code != ExitInterrupted {
		t.Errorf("exit code = %d, want %d\nstderr: %s", code, ExitInterrupted, te.stderr.String())
	}
	if !strings.Contains(te.stderr.String(), "--timeout") {
		t.Errorf("stderr should carry the timeout hint, got:\n%s", te.stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestReportError - Error line and hint
// ---------------------------------------------------------------------------

func TestReportError(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t, "")
	if code := reportError(te.Environment, nil); code != ExitSuccess {
		t.Errorf("nil error code = %d", code)
	}
	if te.stderr.Len() != 0 {
		t.Errorf("nil error wrote %q", te.stderr.String())
	}

	code := reportError(te.Environment, ErrUnknownCommand)
	if code != ExitUsage {
		t.Errorf("code = %d, want %d", code, ExitUsage)
	}
	if !strings.HasPrefix(te.stderr.String(), "error: unknown command") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}
