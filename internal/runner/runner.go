// Package runner is the subprocess substrate behind every command-backed
// tool. Run never returns a Go error: spawn failures, timeouts and abnormal
// exits all surface as data in the Result so handlers decide how to present
// them. A non-zero exit from the command itself is not a runner failure.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"devkit-mcp/internal/log"
)

// Reserved negative exit codes for runner-internal failure classes. Real
// process exit codes are always >= 0.
const (
	// CodeSpawnFailure: the process never started (e.g. executable not found).
	CodeSpawnFailure = -1
	// CodeTimeout: the hard timeout fired and the process was killed.
	CodeTimeout = -2
	// CodeWaitFailure: the process started but reported an abnormal condition
	// (e.g. killed by an external signal).
	CodeWaitFailure = -3
)

// pipeGrace bounds how long Wait may keep the output pipes open after the
// process itself has exited. A command's descendants can inherit the pipes
// and hold them open past the parent's death (including past a timeout
// kill); without this bound, Run would block until the whole tree exits.
const pipeGrace = time.Second

// Spec describes one subprocess invocation.
type Spec struct {
	Name    string
	Args    []string
	Dir     string        // working directory; empty means the runner default
	Timeout time.Duration // hard timeout; zero means the runner default
}

// Result is the uniform outcome of a Run call. Immutable once returned.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      string // failure class description; empty on a clean resolution
	Duration time.Duration
}

// TimedOut reports whether the invocation was killed by its timeout.
func (r Result) TimedOut() bool {
	return r.ExitCode == CodeTimeout
}

// Runner spawns external commands with a default working directory (the
// sandbox root) and a default hard timeout.
type Runner struct {
	defaultDir     string
	defaultTimeout time.Duration
	logger         log.Logger
}

// New creates a Runner. defaultDir is used when Spec.Dir is empty and
// defaultTimeout when Spec.Timeout is zero.
func New(defaultDir string, defaultTimeout time.Duration, logger log.Logger) (*Runner, error) {
	if defaultTimeout <= 0 {
		return nil, fmt.Errorf("default timeout must be positive, got %s", defaultTimeout)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Runner{
		defaultDir:     defaultDir,
		defaultTimeout: defaultTimeout,
		logger:         logger,
	}, nil
}

// Run executes spec and always returns a Result. Exactly one resolution path
// fires per invocation: timeout, context cancellation, or process exit. The
// timeout and cancellation paths kill the process and then reap it, so no
// zombie is left behind.
func (r *Runner) Run(ctx context.Context, spec Spec) Result {
	dir := spec.Dir
	if dir == "" {
		dir = r.defaultDir
	}
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	started := time.Now()

	cmd := exec.Command(spec.Name, spec.Args...) // #nosec G204 -- argv built by validated tool handlers
	cmd.Dir = dir
	cmd.WaitDelay = pipeGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		r.logger.Warn("spawn failed", "command", spec.Name, "error", err)
		return Result{
			ExitCode: CodeSpawnFailure,
			Stderr:   err.Error(),
			Err:      fmt.Sprintf("spawn failed: %v", err),
			Duration: time.Since(started),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return r.resolveExit(spec, err, &stdout, &stderr, started)

	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done // reap; Wait also flushes the output buffers
		r.logger.Warn("command timed out", "command", spec.Name, "timeout", timeout)
		return Result{
			ExitCode: CodeTimeout,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      fmt.Sprintf("timed out after %s", timeout),
			Duration: time.Since(started),
		}

	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		r.logger.Warn("command canceled", "command", spec.Name, "cause", ctx.Err())
		return Result{
			ExitCode: CodeTimeout,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      fmt.Sprintf("canceled: %v", ctx.Err()),
			Duration: time.Since(started),
		}
	}
}

// resolveExit maps a Wait outcome to a Result. A command's own non-zero exit
// code is forwarded as data, not treated as a runner failure.
func (r *Runner) resolveExit(spec Spec, err error, stdout, stderr *bytes.Buffer, started time.Time) Result {
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(started),
	}

	if err == nil {
		res.ExitCode = 0
		return res
	}

	// The process exited cleanly but a descendant kept the output pipes open
	// past the grace period; the captured output may be truncated.
	if errors.Is(err, exec.ErrWaitDelay) {
		r.logger.Warn("output pipes abandoned after exit", "command", spec.Name)
		res.ExitCode = 0
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		res.ExitCode = exitErr.ExitCode()
		return res
	}

	// Signal death or another post-start failure: keep the negative space
	// reserved for runner classes instead of forwarding raw -1.
	r.logger.Warn("command wait failed", "command", spec.Name, "error", err)
	res.ExitCode = CodeWaitFailure
	res.Err = fmt.Sprintf("spawn error: %v", err)
	return res
}
