package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Runner executes one collaborator command and reports its outcome. The
// orchestrator never inspects collaborator output beyond the exit
// status.
type Runner interface {
	Run(ctx context.Context, command []string) error
}

// Compile-time interface satisfaction check.
var _ Runner = (*ExecRunner)(nil)

// ExecRunner invokes commands as local subprocesses. The context carries
// cancellation: terminating the orchestrator terminates the running
// collaborator. No timeout is imposed; a hung collaborator hangs the
// pipeline.
type ExecRunner struct {
	// Quiet discards collaborator output instead of inheriting the
	// orchestrator's streams.
	Quiet bool

	// Stdout and Stderr default to the process streams when nil.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the command and blocks until it exits.
func (r *ExecRunner) Run(ctx context.Context, command []string) error {
	if len(command) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	if r.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = r.Stdout
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		cmd.Stderr = r.Stderr
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}
	}

	return cmd.Run()
}

// ExitCode extracts the subprocess exit status from a runner error, or
// nil when the command never ran (spawn failure, cancellation).
func ExitCode(err error) *int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return &code
	}
	return nil
}
