package inspect

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
)

// Default searches of the report.
var (
	DefaultExtensions = []string{".py", ".spec", ".bat"}
	DefaultKeywords   = []string{"main", "gui", "path_manager", "requirements", "setup"}
)

// Entry is one file or directory below the inspected root.
type Entry struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Mode  string `json:"mode"`
	Size  int64  `json:"size"`
	IsDir bool   `json:"isDir"`

	// branch is the tree drawing in front of Name
	branch string
}

// Listing is the non-recursive content of one immediate subdirectory.
type Listing struct {
	Dir     string  `json:"dir"`
	Entries []Entry `json:"entries"`
}

// Matches are the files found for one search term.
type Matches struct {
	Term  string   `json:"term"`
	Paths []string `json:"paths"`
}

// Report is the complete inspection of a directory.
type Report struct {
	Root       string    `json:"root"`
	Tree       []Entry   `json:"tree"`
	Subdirs    []Listing `json:"subdirs"`
	Extensions []Matches `json:"extensions"`
	Keywords   []Matches `json:"keywords"`
}

// Options selects the searches of a report.
type Options struct {
	Extensions []string
	Keywords   []string
}

// Inspector builds reports without touching the inspected tree.
type Inspector struct {
	fs filesystem.FileSystem
}

// New creates an Inspector
func New(fs filesystem.FileSystem) *Inspector {
	return &Inspector{fs: fs}
}

// Inspect reports on dir. Unreadable entries are skipped.
func (i *Inspector) Inspect(dir string, opts Options) (*Report, error) {
	dir = filepath.Clean(dir)
	if !i.fs.IsDir(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	if opts.Extensions == nil {
		opts.Extensions = DefaultExtensions
	}
	if opts.Keywords == nil {
		opts.Keywords = DefaultKeywords
	}

	report := &Report{Root: dir}
	i.tree(dir, "", "", &report.Tree)

	top, err := i.list(dir, "")
	if err != nil {
		return nil, err
	}
	for _, e := range top {
		if !e.IsDir {
			continue
		}
		entries, err := i.list(filepath.Join(dir, e.Name), e.Path)
		if err != nil {
			continue
		}
		report.Subdirs = append(report.Subdirs, Listing{Dir: e.Path, Entries: entries})
	}

	for _, ext := range opts.Extensions {
		ext = normalizeExt(ext)
		report.Extensions = append(report.Extensions, Matches{
			Term:  "*" + ext,
			Paths: search(report.Tree, func(name string) bool { return strings.EqualFold(filepath.Ext(name), ext) }),
		})
	}

	for _, kw := range opts.Keywords {
		needle := strings.ToLower(kw)
		report.Keywords = append(report.Keywords, Matches{
			Term:  kw,
			Paths: search(report.Tree, func(name string) bool { return strings.Contains(strings.ToLower(name), needle) }),
		})
	}

	return report, nil
}

func normalizeExt(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), "*")
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func search(tree []Entry, match func(name string) bool) []string {
	paths := []string{}
	for _, e := range tree {
		if !e.IsDir && match(e.Name) {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

func (i *Inspector) list(dir, rel string) ([]Entry, error) {
	dirEntries, err := i.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, newEntry(filepath.ToSlash(filepath.Join(rel, de.Name())), info))
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Name < entries[b].Name
	})
	return entries, nil
}

func newEntry(path string, info fs.FileInfo) Entry {
	e := Entry{
		Path:  path,
		Name:  info.Name(),
		Mode:  info.Mode().String(),
		IsDir: info.IsDir(),
	}
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}

func (i *Inspector) tree(dir, rel, indent string, out *[]Entry) {
	entries, err := i.list(dir, rel)
	if err != nil {
		return
	}

	for n, e := range entries {
		last := n == len(entries)-1

		e.branch = indent + "├─ "
		childIndent := indent + "│  "
		if last {
			e.branch = indent + "└─ "
			childIndent = indent + "   "
		}
		*out = append(*out, e)

		if e.IsDir {
			i.tree(filepath.Join(dir, e.Name), e.Path, childIndent, out)
		}
	}
}
