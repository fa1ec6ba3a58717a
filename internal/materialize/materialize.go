package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
)

// LastBundleFile names the file in <root>/dist that records which folder
// the latest build produced.
const LastBundleFile = ".freeze-bundle"

// ErrLocalizedExists is returned when the localized bundle folder is already
// taken. Nothing is copied in that case.
var ErrLocalizedExists = errors.New("localized bundle folder already exists")

// Result describes what Materialize did.
type Result struct {
	// BundleDir is where the bundle ended up below <root>/dist.
	BundleDir string

	Files   int
	Renamed bool
}

// Materializer copies the staged build outputs into the project.
type Materializer struct {
	fs filesystem.FileSystem
}

// New creates a Materializer
func New(fs filesystem.FileSystem) *Materializer {
	return &Materializer{fs: fs}
}

// Materialize copies <staging>/build and <staging>/dist into root, leaving
// the staging copies in place, then moves dist/<name> to dist/<localized>
// when localized is set. Every top-level output of the staged build replaces
// its counterpart under root, so files of older builds do not survive.
//
// A localized folder that already exists is never overwritten: Materialize
// fails with ErrLocalizedExists before touching root.
func (m *Materializer) Materialize(stagingDir, root, name, localized string) (*Result, error) {
	result := &Result{BundleDir: freeze.BundleDir(root, name)}

	rename := localized != "" && localized != name
	target := freeze.BundleDir(root, localized)
	if rename && m.fs.Exists(target) {
		return nil, fmt.Errorf("%w: %s, run freeze clean to replace it", ErrLocalizedExists, target)
	}

	for _, sub := range []string{freeze.BuildDir, freeze.DistDir} {
		dst := filepath.Join(root, sub)
		if err := m.fs.MkdirAll(dst, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dst, err)
		}

		src := filepath.Join(stagingDir, sub)
		if !m.fs.IsDir(src) {
			continue
		}

		n, err := m.replace(src, dst)
		if err != nil {
			return nil, err
		}
		result.Files += n
	}

	if !m.fs.IsDir(result.BundleDir) {
		return nil, fmt.Errorf("bundle %s missing after copy", result.BundleDir)
	}

	if rename {
		if err := m.fs.Rename(result.BundleDir, target); err != nil {
			return nil, fmt.Errorf("failed to rename bundle to %s: %w", localized, err)
		}
		result.BundleDir = target
		result.Renamed = true
	}

	marker := filepath.Join(root, freeze.DistDir, LastBundleFile)
	if err := m.fs.WriteFile(marker, []byte(filepath.Base(result.BundleDir)+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("failed to record bundle: %w", err)
	}

	return result, nil
}

// LastBundle returns the bundle folder recorded by the latest Materialize
// below root, or false when there is none.
func LastBundle(fsys filesystem.FileSystem, root string) (string, bool) {
	data, err := fsys.ReadFile(filepath.Join(root, freeze.DistDir, LastBundleFile))
	if err != nil {
		return "", false
	}

	name := strings.TrimSpace(string(data))
	if name == "" || name != filepath.Base(name) {
		return "", false
	}

	dir := freeze.BundleDir(root, name)
	if !fsys.IsDir(dir) {
		return "", false
	}
	return dir, true
}

// replace removes each entry of dst that src also has, then copies src in.
func (m *Materializer) replace(src, dst string) (int, error) {
	entries, err := m.fs.ReadDir(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", src, err)
	}

	for _, entry := range entries {
		old := filepath.Join(dst, entry.Name())
		if err := m.fs.RemoveAll(old); err != nil {
			return 0, fmt.Errorf("failed to remove previous %s: %w", old, err)
		}
	}

	return m.CopyTree(src, dst)
}

// CopyTree copies src into dst recursively and returns the number of files
// copied.
func (m *Materializer) CopyTree(src, dst string) (int, error) {
	src = filepath.Clean(src)
	files := 0

	err := m.fs.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if entry.IsDir() {
			return m.fs.MkdirAll(target, 0755)
		}
		if entry.Type()&fs.ModeSymlink != 0 && m.fs.IsDir(path) {
			return nil
		}

		if err := m.fs.CopyFile(path, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", filepath.ToSlash(rel), err)
		}
		files++
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return files, nil
}
