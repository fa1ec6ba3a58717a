package freeze

import (
	"context"
	"fmt"
	"io"

	"github.com/jakoblorz/go-freeze/internal/process"
)

// ToolError is a PyInstaller run that exited non-zero.
type ToolError struct {
	ExitCode int
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("PyInstaller exited with code %d", e.ExitCode)
}

// Freezer runs PyInstaller.
type Freezer struct {
	runner process.Runner

	// Program and Prefix select how PyInstaller is started, either an
	// interpreter with "-m PyInstaller" or the pyinstaller executable.
	Program string
	Prefix  []string

	Dir string
	Env []string
	Out io.Writer
}

// NewModuleFreezer runs PyInstaller as a module of python.
func NewModuleFreezer(runner process.Runner, python, dir string, env []string, out io.Writer) *Freezer {
	return &Freezer{
		runner:  runner,
		Program: python,
		Prefix:  []string{"-m", "PyInstaller"},
		Dir:     dir,
		Env:     env,
		Out:     out,
	}
}

// NewExecutableFreezer runs the pyinstaller executable at path.
func NewExecutableFreezer(runner process.Runner, path, dir string, env []string, out io.Writer) *Freezer {
	return &Freezer{
		runner:  runner,
		Program: path,
		Dir:     dir,
		Env:     env,
		Out:     out,
	}
}

// Command returns the command Run would start.
func (f *Freezer) Command(opts Options) process.Command {
	return process.Command{
		Name:   f.Program,
		Args:   append(append([]string{}, f.Prefix...), Args(opts)...),
		Dir:    f.Dir,
		Env:    f.Env,
		Stdout: f.Out,
		Stderr: f.Out,
	}
}

// Run freezes opts.Entry. A non-zero exit yields a *ToolError.
func (f *Freezer) Run(ctx context.Context, opts Options) error {
	code, err := f.runner.Run(ctx, f.Command(opts))
	if err != nil {
		return err
	}
	if code != 0 {
		return &ToolError{ExitCode: code}
	}
	return nil
}
