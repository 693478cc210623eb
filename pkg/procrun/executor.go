// Package procrun runs external commands under a wall-clock timeout,
// capturing their output and reporting the outcome as a value rather than an
// error. Every failure mode (empty argv, spawn failure, wait failure,
// timeout, non-zero exit) lands in the returned Result so callers never have
// to recover from a panic or distinguish error types at the boundary.
package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// minTimeout is the floor applied to requested timeouts so a zero or negative
// duration cannot disable the deadline entirely.
const minTimeout = time.Millisecond

// Spec describes one command invocation. Argv[0] is the executable; the
// remainder are its arguments. An empty Dir leaves the child in the caller's
// working directory.
type Spec struct {
	Argv    []string
	Dir     string
	Timeout time.Duration
}

// Result is the structured outcome of a command invocation. ExitCode is -1
// whenever no real exit code is available (empty argv, spawn failure, wait
// failure, timeout, or death by signal). Success implies ExitCode is 0 and
// Error is empty.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Error    string
}

// Executor spawns child processes and waits for them with a deadline.
// Invocations are independent; a single Executor is safe for concurrent use.
type Executor struct {
	logger Logger
}

// NewExecutor builds an executor. A nil logger disables logging.
func NewExecutor(logger Logger) *Executor {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &Executor{logger: logger}
}

// Execute runs the command described by spec and blocks until it exits or the
// timeout elapses, whichever comes first. On timeout the child is killed and
// reaped before returning, so no zombie remains; whatever output the child
// produced up to that point is included in the Result.
func (e *Executor) Execute(ctx context.Context, spec Spec) Result {
	if len(spec.Argv) == 0 {
		return Result{ExitCode: -1, Error: "Empty argv"}
	}

	timeout := spec.Timeout
	if timeout < minTimeout {
		timeout = minTimeout
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}

	// exec.Cmd drains each stream into its buffer on a dedicated goroutine
	// for the lifetime of the wait, so a child that outgrows the pipe buffer
	// cannot deadlock the call.
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Start(); err != nil {
		e.logger.Warn("spawn failed", Field("argv0", spec.Argv[0]), Field("error", err))
		return Result{ExitCode: -1, Error: fmt.Sprintf("Spawn error: %v", err)}
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	timedOut := false
	select {
	case <-waitCtx.Done():
		timedOut = true
		_ = cmd.Process.Kill()
		// Reap the child and join the drain goroutines before reading the
		// buffers; cmd.Wait only returns once both streams hit EOF.
		<-done
	case waitErr = <-done:
	}

	stdout := lossyString(stdoutBuf.Bytes())
	stderr := lossyString(stderrBuf.Bytes())

	if timedOut {
		e.logger.Warn("command timed out",
			Field("argv0", spec.Argv[0]),
			Field("timeout", timeout))
		return Result{
			ExitCode: -1,
			Stdout:   stdout,
			Stderr:   stderr,
			Error:    fmt.Sprintf("Command timed out after %.1fs", timeout.Seconds()),
		}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			e.logger.Error("wait failed", waitErr, Field("argv0", spec.Argv[0]))
			return Result{
				ExitCode: -1,
				Stdout:   stdout,
				Stderr:   stderr,
				Error:    fmt.Sprintf("Wait error: %v", waitErr),
			}
		}
		code := exitErr.ExitCode()
		e.logger.Debug("command exited", Field("argv0", spec.Argv[0]), Field("exit_code", code))
		return Result{
			ExitCode: code,
			Stdout:   stdout,
			Stderr:   stderr,
			Error:    fmt.Sprintf("Exit code: %d", code),
		}
	}

	e.logger.Debug("command completed", Field("argv0", spec.Argv[0]))
	return Result{Success: true, Stdout: stdout, Stderr: stderr}
}

// ExecuteCommand is the seconds-based convenience form of Execute, matching
// the surface hosts call across the library boundary.
func (e *Executor) ExecuteCommand(ctx context.Context, argv []string, cwd string, timeoutSeconds float64) Result {
	return e.Execute(ctx, Spec{
		Argv:    argv,
		Dir:     cwd,
		Timeout: time.Duration(timeoutSeconds * float64(time.Second)),
	})
}

// lossyString decodes bytes as UTF-8, substituting the replacement character
// for invalid sequences instead of failing.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
