package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long output pipes may stay open after the process is killed.
const waitDelay = 2 * time.Second

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration
}

// NewRunner creates a new ExecRunner.
func NewRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes a command and returns its combined stdout/stderr output.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{ExitCode: -1}, errors.New("command name is required")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = waitDelay
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return Result{Output: out}, nil
	}

	if ctx.Err() != nil {
		return Result{Output: out, ExitCode: -1}, fmt.Errorf("run %s: %w", c.Name, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Output: out, ExitCode: exitErr.ExitCode()}, nil
	}
	return Result{Output: out, ExitCode: -1}, fmt.Errorf("run %s: %w", c.Name, err)
}

// Verify ExecRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ExecRunner)(nil)
