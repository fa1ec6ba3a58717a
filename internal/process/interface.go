package process

import (
	"context"
	"io"
	"strings"
)

// Command describes a single child process invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory; empty means the current one.
	Dir string

	// Env is appended to the parent environment.
	Env []string

	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			parts[i] = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
	}
	return strings.Join(parts, " ")
}

// Runner provides an abstraction over child processes for testability.
//
// Run blocks until the process exits. A process that started and exited
// non-zero is not an error: its status is returned as the exit code. The
// error is reserved for processes that could not be started or were
// killed through ctx.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
	LookPath(file string) (string, error)
}
