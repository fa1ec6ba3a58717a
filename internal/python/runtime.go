package python

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jakoblorz/go-freeze/internal/process"
)

// DefaultCandidates are tried in order when no interpreter is configured.
var DefaultCandidates = []string{"python", "py", "python3"}

// ErrRuntimeNotFound means no usable interpreter was found.
var ErrRuntimeNotFound = errors.New("python runtime not found")

// Runtime is a located interpreter.
type Runtime struct {
	Path    string
	Version string
}

// Locator finds a Python interpreter on PATH.
type Locator struct {
	runner process.Runner
}

// NewLocator creates a Locator
func NewLocator(runner process.Runner) *Locator {
	return &Locator{runner: runner}
}

// Find returns the first candidate that resolves on PATH, answers
// --version and is at least minVersion. preferred, when set, is the only
// candidate.
func (l *Locator) Find(ctx context.Context, preferred, minVersion string) (*Runtime, error) {
	candidates := DefaultCandidates
	if preferred != "" {
		candidates = []string{preferred}
	}

	var problems []string
	for _, name := range candidates {
		path, err := l.runner.LookPath(name)
		if err != nil {
			continue
		}

		version, err := l.version(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		if minVersion != "" && !AtLeast(version, minVersion) {
			problems = append(problems, fmt.Sprintf("%s is %s, need at least %s", name, version, minVersion))
			continue
		}

		return &Runtime{Path: path, Version: version}, nil
	}

	if len(problems) == 0 {
		return nil, fmt.Errorf("%w: tried %s", ErrRuntimeNotFound, strings.Join(candidates, ", "))
	}
	return nil, fmt.Errorf("%w: %s", ErrRuntimeNotFound, strings.Join(problems, "; "))
}

func (l *Locator) version(ctx context.Context, path string) (string, error) {
	var out bytes.Buffer
	code, err := l.runner.Run(ctx, process.Command{
		Name:   path,
		Args:   []string{"--version"},
		Stdout: &out,
		Stderr: &out,
	})
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("--version exited with code %d", code)
	}

	return ParseVersion(out.String())
}
