package tools

import (
	"bytes"
	"errors"
	"os/exec"
)

// CommandResult is the outcome of one finished child process.
type CommandResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// CommandRunner abstracts blocking child-process execution.
type CommandRunner interface {
	Run(dir string, name string, args ...string) (CommandResult, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// Run waits for the child to exit. A non-zero exit is reported through
// ExitCode with a nil error; err is set only when the child could not be
// started or waited on, in which case ExitCode is 127 or 1.
func (r ExecRunner) Run(dir string, name string, args ...string) (CommandResult, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// killed by a signal
			result.ExitCode = 1
		}
		return result, nil
	}

	result.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		result.ExitCode = 127
	}
	return result, err
}
