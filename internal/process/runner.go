// Package process runs external programs with bounded waits.
//
// Every call goes through the Runner interface so callers can swap in a
// fake in tests. ExecRunner classifies failures into the sentinel errors
// below and kills the whole process group when the context expires.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"
)

// Sentinel errors for process execution.
var (
	ErrNotFound = errors.New("executable not found")
	ErrExit     = errors.New("process exited with non-zero status")
	ErrStart    = errors.New("process failed to run")
	ErrTimeout  = errors.New("process timed out")
)

// defaultWaitDelay bounds how long Wait blocks on pipes after a kill.
const defaultWaitDelay = 2 * time.Second

// Output is the captured result of a finished process.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution to enable testing without real subprocesses.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct {
	// WaitDelay overrides defaultWaitDelay when positive.
	WaitDelay time.Duration
}

// Compile-time interface check.
var _ Runner = (*ExecRunner)(nil)

// Run executes name with args and captures stdout and stderr.
// The context deadline is the stage budget: on expiry the process group is
// killed and the error wraps ErrTimeout.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- converter paths come from config
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			KillProcessGroup(cmd.Process.Pid)
		}
		return nil
	}
	cmd.WaitDelay = defaultWaitDelay
	if r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	return out, classify(ctx, err, &out)
}

// classify maps an exec error onto the package sentinels.
func classify(ctx context.Context, err error, out *Output) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrTimeout, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return fmt.Errorf("%w: %v", ErrExit, err)
	}
	return fmt.Errorf("%w: %v", ErrStart, err)
}

// LookPath resolves name through PATH, or checks it directly when it
// contains a path separator.
func LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
