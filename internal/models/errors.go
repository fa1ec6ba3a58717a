package models

import (
	"errors"
	"fmt"
)

// Process exit codes of the build commands.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitStagingFailure = 2
)

// BuildError is a fatal failure of one stage.
type BuildError struct {
	Stage Stage

	// Code is the exit status the process should end with.
	Code int

	// ToolExitCode is the exit code of the failed child process, if any.
	ToolExitCode int

	Err error
}

func (e *BuildError) Error() string {
	if e.ToolExitCode != 0 {
		return fmt.Sprintf("%s failed (exit code %d): %v", e.Stage, e.ToolExitCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a BuildError that ends the process with ExitFailure.
func NewBuildError(stage Stage, err error) *BuildError {
	return &BuildError{Stage: stage, Code: ExitFailure, Err: err}
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var buildErr *BuildError
	if errors.As(err, &buildErr) && buildErr.Code != 0 {
		return buildErr.Code
	}
	return ExitFailure
}
