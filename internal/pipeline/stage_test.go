package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestStageError - Message, Is and Unwrap
// ---------------------------------------------------------------------------

func TestStageError_Error(t *testing.T) {
	t.Parallel()

	err := &StageError{Stage: StageTypeset, Tool: "latex", ExitCode: 1, Err: errors.New("exit status 1")}
	if got := err.Error(); got != "typeset stage failed (latex): exit status 1" {
		t.Errorf("Error() = %q", got)
	}

	noTool := &StageError{Stage: StageRasterize, Err: errors.New("boom")}
	if got := noTool.Error(); got != "rasterize stage failed: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStageError_Is(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage Stage
		want  error
		not   []error
	}{
		{StageTypeset, ErrTypeset, []error{ErrRasterize, ErrPostProcess}},
		{StageRasterize, ErrRasterize, []error{ErrTypeset, ErrPostProcess}},
		{StagePostProcess, ErrPostProcess, []error{ErrTypeset, ErrRasterize}},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			t.Parallel()

			err := fmt.Errorf("converting: %w", &StageError{Stage: tt.stage, Err: errors.New("x")})
			if !errors.Is(err, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.want)
			}
			for _, other := range tt.not {
				if errors.Is(err, other) {
					t.Errorf("errors.Is(%v, %v) = true, want false", err, other)
				}
			}
		})
	}
}

func TestStageError_Unwrap(t *testing.T) {
	t.Parallel()

	err := &StageError{Stage: StageTypeset, Err: context.DeadlineExceeded}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("StageError should unwrap to its cause")
	}

	var se *StageError
	if !errors.As(fmt.Errorf("wrap: %w", err), &se) || se.Stage != StageTypeset {
		t.Error("errors.As should find the StageError")
	}
}

func TestSentinelFor_Unknown(t *testing.T) {
	t.Parallel()

	if err := SentinelFor(StageTemplate); !strings.Contains(err.Error(), "failed") {
		t.Errorf("SentinelFor(template) = %v", err)
	}
}
