package process

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Handler scripts the outcome of a mocked command.
type Handler func(cmd Command) (int, error)

type mockHandler struct {
	match   func(Command) bool
	handler Handler
}

// MockRunner implements Runner for testing. Commands without a matching
// handler exit 0 and print nothing.
type MockRunner struct {
	mu       sync.Mutex
	calls    []Command
	handlers []mockHandler
	paths    map[string]string
}

// NewMockRunner creates a new MockRunner
func NewMockRunner() *MockRunner {
	return &MockRunner{
		paths: make(map[string]string),
	}
}

// On registers a handler; later registrations win over earlier ones.
func (m *MockRunner) On(match func(Command) bool, h Handler) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers = append(m.handlers, mockHandler{match: match, handler: h})
	return m
}

// SetPath makes LookPath(file) resolve to path.
func (m *MockRunner) SetPath(file, path string) *MockRunner {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paths[file] = path
	return m
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) (int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	var h Handler
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if m.handlers[i].match(cmd) {
			h = m.handlers[i].handler
			break
		}
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return -1, fmt.Errorf("%s interrupted: %w", cmd.Name, err)
	}

	if h == nil {
		return 0, nil
	}
	return h(cmd)
}

func (m *MockRunner) LookPath(file string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.paths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
}

// Calls returns every command run so far.
func (m *MockRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Command(nil), m.calls...)
}

// Called reports whether any recorded command matches.
func (m *MockRunner) Called(match func(Command) bool) bool {
	for _, c := range m.Calls() {
		if match(c) {
			return true
		}
	}
	return false
}

// HasArgs matches commands whose argument list contains every arg.
func HasArgs(args ...string) func(Command) bool {
	return func(c Command) bool {
		for _, want := range args {
			found := false
			for _, got := range c.Args {
				if got == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
}

// Exit returns a handler that exits with code.
func Exit(code int) Handler {
	return func(Command) (int, error) {
		return code, nil
	}
}

// Print returns a handler that writes out to stdout and exits 0.
func Print(out string) Handler {
	return func(cmd Command) (int, error) {
		if cmd.Stdout != nil {
			_, _ = io.WriteString(cmd.Stdout, out)
		}
		return 0, nil
	}
}
