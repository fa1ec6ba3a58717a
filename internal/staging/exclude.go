package staging

import (
	"strings"

	gitignore "github.com/denormal/go-gitignore"
)

// DefaultExcludes keeps version control metadata, virtual environments,
// earlier build outputs, caches and generated spec files out of the
// staging copy. Patterns use .gitignore syntax.
var DefaultExcludes = []string{
	".git/",
	".svn/",
	".hg/",
	".venv/",
	"venv/",
	"env/",
	"build/",
	"dist/",
	"build_logs/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".idea/",
	".vscode/",
	"*.egg-info/",
	"*.spec",
}

// Excluder decides which project paths stay out of the staging copy.
type Excluder struct {
	ignore gitignore.GitIgnore
}

// NewExcluder builds an Excluder from DefaultExcludes plus extra patterns.
func NewExcluder(root string, extra []string) *Excluder {
	patterns := append(append([]string{}, DefaultExcludes...), extra...)
	body := strings.Join(patterns, "\n") + "\n"

	return &Excluder{
		ignore: gitignore.New(strings.NewReader(body), root, nil),
	}
}

// Excluded reports whether rel, a slash separated path relative to the
// project root, must not be mirrored.
func (e *Excluder) Excluded(rel string, isDir bool) bool {
	match := e.ignore.Relative(rel, isDir)
	return match != nil && match.Ignore()
}
