package python

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/jakoblorz/go-freeze/internal/process"
)

// VenvDir is the virtual environment directory inside the staging directory.
const VenvDir = ".venv"

// MinPyInstaller is the oldest PyInstaller accepted without a warning.
const MinPyInstaller = "5.0"

// BaseEnv is set for every child process of a build.
var BaseEnv = []string{
	"PYINSTALLER_STRICT_COLLECT_MODE=0",
	"PYTHONUTF8=1",
	"PYTHONIOENCODING=utf-8",
}

// VenvPython returns the interpreter path inside a virtual environment.
func VenvPython(venvDir, goos string) string {
	if goos == "windows" {
		return filepath.Join(venvDir, "Scripts", "python.exe")
	}
	return filepath.Join(venvDir, "bin", "python")
}

// InstallError is a failed pip install.
type InstallError struct {
	Packages []string
	ExitCode int
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("pip install %v exited with code %d", e.Packages, e.ExitCode)
}

// Env runs commands with the interpreter of a virtual environment.
type Env struct {
	runner process.Runner
	dir    string
	python string
	extra  []string
	out    io.Writer
}

// EnvOptions configures CreateVenv.
type EnvOptions struct {
	// WorkDir is where commands run, normally the staging directory.
	WorkDir string

	// Extra environment on top of BaseEnv
	Extra []string

	// Output receives stdout and stderr of every command.
	Output io.Writer
}

// CreateVenv creates <WorkDir>/.venv with rt and returns a handle on it.
func CreateVenv(ctx context.Context, runner process.Runner, rt *Runtime, opts EnvOptions) (*Env, error) {
	env := append(append([]string{}, BaseEnv...), opts.Extra...)
	venv := filepath.Join(opts.WorkDir, VenvDir)

	code, err := runner.Run(ctx, process.Command{
		Name:   rt.Path,
		Args:   []string{"-m", "venv", venv},
		Dir:    opts.WorkDir,
		Env:    env,
		Stdout: opts.Output,
		Stderr: opts.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual environment: %w", err)
	}
	if code != 0 {
		return nil, fmt.Errorf("failed to create virtual environment: venv exited with code %d", code)
	}

	return &Env{
		runner: runner,
		dir:    opts.WorkDir,
		python: VenvPython(venv, runtime.GOOS),
		extra:  env,
		out:    opts.Output,
	}, nil
}

// Python returns the venv interpreter path
func (e *Env) Python() string {
	return e.python
}

// Environ returns the environment passed to child processes.
func (e *Env) Environ() []string {
	return append([]string(nil), e.extra...)
}

// Run runs the venv interpreter with args, streaming output.
func (e *Env) Run(ctx context.Context, args ...string) (int, error) {
	return e.runner.Run(ctx, process.Command{
		Name:   e.python,
		Args:   args,
		Dir:    e.dir,
		Env:    e.extra,
		Stdout: e.out,
		Stderr: e.out,
	})
}

// Install runs pip install with args, e.g. a package list or
// "--upgrade pip".
func (e *Env) Install(ctx context.Context, args ...string) error {
	code, err := e.Run(ctx, append([]string{"-m", "pip", "install", "--disable-pip-version-check"}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to run pip: %w", err)
	}
	if code != 0 {
		return &InstallError{Packages: packagesOf(args), ExitCode: code}
	}
	return nil
}

func packagesOf(args []string) []string {
	var pkgs []string
	for _, a := range args {
		if len(a) > 0 && a[0] != '-' {
			pkgs = append(pkgs, a)
		}
	}
	return pkgs
}

// PyInstallerVersion asks the installed PyInstaller for its version.
func (e *Env) PyInstallerVersion(ctx context.Context) (string, error) {
	var out bytes.Buffer
	code, err := e.runner.Run(ctx, process.Command{
		Name:   e.python,
		Args:   []string{"-m", "PyInstaller", "--version"},
		Dir:    e.dir,
		Env:    e.extra,
		Stdout: &out,
		Stderr: &out,
	})
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("PyInstaller --version exited with code %d", code)
	}
	return ParseVersion(out.String())
}
