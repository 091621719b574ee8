package pipeline

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/alnah/go-texsnip/internal/process"
)

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	// Run starts name with args in dir and waits for it. It returns the
	// tail of the combined output and the error from exec.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

const (
	defaultOutputLimit = 16 << 10
	defaultWaitDelay   = 2 * time.Second
)

// ExecRunner implements CommandRunner using os/exec.
// Tools run in their own process group, which is killed when ctx is done.
type ExecRunner struct {
	// Stream receives tool output as it is produced. Nil keeps it captured only.
	Stream io.Writer
	// OutputLimit is how many trailing output bytes are kept. Zero means 16 KiB.
	OutputLimit int
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- argument lists are fixed by the stages
	cmd.Dir = dir
	process.Isolate(cmd)
	cmd.Cancel = func() error {
		if err := process.KillGroup(cmd.Process.Pid); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
	cmd.WaitDelay = defaultWaitDelay

	limit := r.OutputLimit
	if limit <= 0 {
		limit = defaultOutputLimit
	}
	tail := &tailBuffer{limit: limit}

	var out io.Writer = tail
	if r.Stream != nil {
		out = io.MultiWriter(tail, r.Stream)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	return tail.Bytes(), err
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte {
	return t.buf
}
