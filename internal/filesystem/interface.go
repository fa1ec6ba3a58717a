package filesystem

import (
	"io"
	"io/fs"
)

// FileSystem provides an abstraction over file operations for testability
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	CopyFile(src, dst string) error

	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// OpenAppend opens path for appending, creating it if necessary.
	OpenAppend(path string) (io.WriteCloser, error)

	// Create opens path for writing, truncating it.
	Create(path string) (io.WriteCloser, error)

	// Directory operations
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	IsDir(path string) bool
	Getwd() (string, error)
	TempDir() string

	// File walking
	WalkDir(root string, fn fs.WalkDirFunc) error

	// Glob patterns
	Glob(pattern string) ([]string, error)
}
