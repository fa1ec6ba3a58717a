package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"unicode"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
)

// ErrEntryNotFound means the entry point is missing from the staged copy.
var ErrEntryNotFound = errors.New("entry file not found")

// MirrorStats counts what Mirror did.
type MirrorStats struct {
	Files    int
	Dirs     int
	Excluded []string
}

// Stager owns the staging directory of one run.
type Stager struct {
	fs  filesystem.FileSystem
	dir string
}

// NewStager creates a Stager for dir
func NewStager(fs filesystem.FileSystem, dir string) *Stager {
	return &Stager{
		fs:  fs,
		dir: filepath.Clean(dir),
	}
}

// Dir returns the staging directory
func (s *Stager) Dir() string {
	return s.dir
}

// Path joins rel (slash separated) onto the staging directory.
func (s *Stager) Path(rel string) string {
	return filepath.Join(s.dir, filepath.FromSlash(rel))
}

// Create removes what a previous failed run left behind and creates an
// empty staging directory.
func (s *Stager) Create() error {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove stale staging directory %s: %w", s.dir, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create staging directory %s: %w", s.dir, err)
	}

	return nil
}

// Mirror copies the tree below src into the staging directory, skipping
// everything the excluder rejects.
func (s *Stager) Mirror(src string, excluder *Excluder) (*MirrorStats, error) {
	src = filepath.Clean(src)
	stats := &MirrorStats{}

	err := s.fs.WalkDir(src, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == src {
			return nil
		}

		// the staging directory may live below the project in odd setups
		if path == s.dir {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)

		if excluder != nil && excluder.Excluded(relSlash, entry.IsDir()) {
			stats.Excluded = append(stats.Excluded, relSlash)
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(s.dir, rel)

		if entry.IsDir() {
			if err := s.fs.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			stats.Dirs++
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 && s.fs.IsDir(path) {
			stats.Excluded = append(stats.Excluded, relSlash)
			return nil
		}

		if err := s.fs.CopyFile(path, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", relSlash, err)
		}
		stats.Files++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to mirror %s: %w", src, err)
	}

	return stats, nil
}

// VerifyEntry checks that entry (slash separated, relative) was staged and
// returns its staged path.
func (s *Stager) VerifyEntry(entry string) (string, error) {
	path := s.Path(entry)
	info, err := s.fs.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}
	return path, nil
}

// IsASCII reports whether path consists of ASCII characters only.
func IsASCII(path string) bool {
	for _, r := range path {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Cleanup removes the staging directory and confirms it is gone.
func (s *Stager) Cleanup() error {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove staging directory %s: %w", s.dir, err)
	}
	if s.fs.Exists(s.dir) {
		return fmt.Errorf("staging directory %s still exists after cleanup", s.dir)
	}
	return nil
}
