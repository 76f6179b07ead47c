package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

const truncationMarker = "\n[output truncated]"

// ProcessResult carries everything a tool needs to report a subprocess run.
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
}

// RunProcess spawns argv under a hard wall-clock timeout and bounded output
// capture. The caller-requested timeout is capped at the sandbox maximum;
// zero means "use the maximum". The whole process group is terminated on
// timeout so children do not outlive the deadline. Output past the byte
// ceiling is dropped and marked, never an error.
func (s *Sandbox) RunProcess(ctx context.Context, argv []string, cwd string, env []string, timeout time.Duration) (*ProcessResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("runprocess: empty argv")
	}

	if timeout <= 0 || timeout > s.maxTimeout {
		timeout = s.maxTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if cwd != "" {
		resolved, err := s.Resolve(cwd)
		if err != nil {
			return nil, err
		}
		cmd.Dir = resolved
	} else {
		cmd.Dir = s.root
	}
	cmd.Env = append(os.Environ(), env...)

	// Run in its own process group so the timeout kill reaches children.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 2 * time.Second

	stdout := newCappedBuffer(s.maxOutputBytes)
	stderr := newCappedBuffer(s.maxOutputBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &ProcessResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		slog.Warn("Subprocess timed out", "argv0", argv[0], "timeout", timeout)
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Spawn failure (binary not found, permission).
		return nil, fmt.Errorf("runprocess %q: %w", argv[0], err)
	}

	result.ExitCode = 0
	return result, nil
}

// cappedBuffer keeps at most limit bytes and appends a truncation marker
// once the ceiling is hit. Safe for the concurrent writes exec may perform.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func newCappedBuffer(limit int64) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.truncated {
		return len(p), nil
	}

	remaining := b.limit - int64(b.buf.Len())
	if remaining <= 0 {
		b.markTruncated()
		return len(p), nil
	}

	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.markTruncated()
		return len(p), nil
	}

	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) markTruncated() {
	b.truncated = true
	b.buf.WriteString(truncationMarker)
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
