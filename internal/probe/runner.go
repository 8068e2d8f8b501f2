// Package probe executes destination health checks. A probe succeeds when
// it reports exit code zero; any execution failure is equivalent to a
// non-zero code and marks the destination not-live.
package probe

import (
	"context"
	"os/exec"
	"time"
)

// Runner executes one opaque health-check command and returns its exit code
type Runner interface {
	Execute(ctx context.Context, command string) (int, error)
}

// RunnerFunc adapts a plain function to the Runner interface
type RunnerFunc func(ctx context.Context, command string) (int, error)

// Execute implements the Runner interface by calling the function
func (f RunnerFunc) Execute(ctx context.Context, command string) (int, error) {
	return f(ctx, command)
}

// CommandRunner runs the probe command through the OS shell and reports its
// exit code. A command that fails to start, or that outlives the context,
// is reported as an error; callers treat that the same as a non-zero exit.
type CommandRunner struct {
	// Shell is the command prefix the probe is appended to.
	// Defaults to ["/bin/sh", "-c"].
	Shell []string
	// Timeout bounds one execution when the caller's context has no
	// earlier deadline. Zero means no extra bound.
	Timeout time.Duration
}

// NewCommandRunner creates a shell-based probe runner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{Shell: []string{"/bin/sh", "-c"}}
}

// Execute runs the command and returns its exit code
func (r *CommandRunner) Execute(ctx context.Context, command string) (int, error) {
	shell := r.Shell
	if len(shell) == 0 {
		shell = []string{"/bin/sh", "-c"}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, shell[1:]...), command)
	cmd := exec.CommandContext(ctx, shell[0], args...)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	// Failed to start, killed by context, or similar OS-level failure.
	return -1, err
}
