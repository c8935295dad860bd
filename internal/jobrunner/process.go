package jobrunner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// ProcessResult is the outcome of a finished child process.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// ProcessRunner runs a command to completion. A non-zero exit is reported in
// the result, not as an error.
type ProcessRunner interface {
	Run(ctx context.Context, name string, args []string) (ProcessResult, error)
}

// ExecRunner runs commands with os/exec. Dir, when set, is the working
// directory of the child.
type ExecRunner struct {
	Dir string
	Env []string
}

func (e ExecRunner) Run(ctx context.Context, name string, args []string) (ProcessResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ProcessResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		res.ExitCode = -1
		return res, err
	}
	return res, nil
}
