// Package exec runs external commands, primarily the go tool the packages
// source depends on.
package exec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGoNotFound is returned when the go command cannot be run.
var ErrGoNotFound = errors.New("go command not found")

// CommandRunner abstracts command execution for dependency injection.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner executes real commands using os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner for production use.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and returns its standard output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := execCommand(ctx, name, args...)
	return cmd.Output()
}

// execCommand is a variable to allow testing.
var execCommand = execCommandImpl

func execCommandImpl(ctx context.Context, name string, args ...string) execCmd {
	return realExecCmd{cmd: exec.CommandContext(ctx, name, args...)}
}

// execCmd abstracts exec.Cmd for testing.
type execCmd interface {
	Output() ([]byte, error)
}

type realExecCmd struct {
	cmd *exec.Cmd
}

func (c realExecCmd) Output() ([]byte, error) {
	return c.cmd.Output()
}

// GoVersion returns the toolchain version reported by "go env GOVERSION",
// e.g. "go1.25.4".
func GoVersion(ctx context.Context, r CommandRunner) (string, error) {
	out, err := r.Run(ctx, "go", "env", "GOVERSION")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGoNotFound, err)
	}
	version := strings.TrimSpace(string(out))
	if !strings.HasPrefix(version, "go") {
		return "", fmt.Errorf("%w: unexpected version %q", ErrGoNotFound, version)
	}
	return version, nil
}
