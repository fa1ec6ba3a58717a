package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MockFileSystem provides in-memory filesystem for testing
type MockFileSystem struct {
	files      map[string]*MockFile
	currentDir string
	tempDir    string

	// Hooks for testing error scenarios, keyed by cleaned path
	MkdirAllErrors map[string]error
	CopyFileErrors map[string]error
	OpenErrors     map[string]error
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:          make(map[string]*MockFile),
		currentDir:     "/workspace",
		tempDir:        "/tmp",
		MkdirAllErrors: make(map[string]error),
		CopyFileErrors: make(map[string]error),
		OpenErrors:     make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	cleanPath := filepath.Clean(path)
	mfs.files[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: time.Now(),
		IsDir:   false,
	}

	mfs.ensureParents(cleanPath)
}

// AddDir adds a directory to the mock filesystem
func (mfs *MockFileSystem) AddDir(path string) {
	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    0755 | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}

	mfs.ensureParents(cleanPath)
}

func (mfs *MockFileSystem) ensureParents(cleanPath string) {
	dir := filepath.Dir(cleanPath)
	for dir != "." && dir != "/" && dir != cleanPath {
		if _, exists := mfs.files[dir]; !exists {
			mfs.AddDir(dir)
		}
		dir = filepath.Dir(dir)
	}
}

func (mfs *MockFileSystem) parentExists(cleanPath string) bool {
	dir := filepath.Dir(cleanPath)
	if dir == "." || dir == "/" {
		return true
	}
	parent, exists := mfs.files[dir]
	return exists && parent.IsDir
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, fs.ErrNotExist
	}
	if file.IsDir {
		return nil, errors.New("is a directory")
	}
	return file.Content, nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	cleanPath := filepath.Clean(path)

	// Ensure parent directory exists
	if !mfs.parentExists(cleanPath) {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	mfs.files[cleanPath] = &MockFile{
		Content: append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
		IsDir:   false,
	}
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		return fs.ErrNotExist
	}
	delete(mfs.files, cleanPath)
	return nil
}

func (mfs *MockFileSystem) CopyFile(src, dst string) error {
	cleanSrc := filepath.Clean(src)
	cleanDst := filepath.Clean(dst)

	if err, ok := mfs.CopyFileErrors[cleanSrc]; ok {
		return err
	}

	file, exists := mfs.files[cleanSrc]
	if !exists {
		return &fs.PathError{Op: "open", Path: src, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return fmt.Errorf("%s is a directory", src)
	}
	if !mfs.parentExists(cleanDst) {
		return &fs.PathError{Op: "open", Path: dst, Err: fs.ErrNotExist}
	}

	mfs.files[cleanDst] = &MockFile{
		Content: append([]byte(nil), file.Content...),
		Mode:    file.Mode,
		ModTime: time.Now(),
		IsDir:   false,
	}
	return nil
}

func (mfs *MockFileSystem) Open(path string) (io.ReadCloser, error) {
	cleanPath := filepath.Clean(path)
	if err, ok := mfs.OpenErrors[cleanPath]; ok {
		return nil, err
	}

	data, err := mfs.ReadFile(cleanPath)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// mockAppender appends writes to the content of a mock file.
type mockAppender struct {
	file *MockFile
}

func (a *mockAppender) Write(p []byte) (int, error) {
	a.file.Content = append(a.file.Content, p...)
	return len(p), nil
}

func (a *mockAppender) Close() error { return nil }

func (mfs *MockFileSystem) OpenAppend(path string) (io.WriteCloser, error) {
	cleanPath := filepath.Clean(path)
	if !mfs.parentExists(cleanPath) {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	file, exists := mfs.files[cleanPath]
	if exists && file.IsDir {
		return nil, errors.New("is a directory")
	}
	if !exists {
		file = &MockFile{Mode: 0644, ModTime: time.Now()}
		mfs.files[cleanPath] = file
	}

	return &mockAppender{file: file}, nil
}

func (mfs *MockFileSystem) Create(path string) (io.WriteCloser, error) {
	cleanPath := filepath.Clean(path)
	if !mfs.parentExists(cleanPath) {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file, exists := mfs.files[cleanPath]; exists && file.IsDir {
		return nil, errors.New("is a directory")
	}

	file := &MockFile{Mode: 0644, ModTime: time.Now()}
	mfs.files[cleanPath] = file
	return &mockAppender{file: file}, nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	cleanPath := filepath.Clean(path)

	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, fs.ErrNotExist
	}
	if !file.IsDir {
		return nil, errors.New("not a directory")
	}

	var entries []fs.DirEntry
	for p, f := range mfs.files {
		if p == cleanPath {
			continue
		}
		dir := filepath.Dir(p)
		if dir == cleanPath {
			entries = append(entries, &mockDirEntry{info: mfs.info(p, f)})
		}
	}

	// Sort entries by name for consistent ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	cleanPath := filepath.Clean(path)
	if err, ok := mfs.MkdirAllErrors[cleanPath]; ok {
		return err
	}

	parts := strings.Split(cleanPath, string(filepath.Separator))

	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if current == "" {
			current = string(filepath.Separator) + part
		} else {
			current = filepath.Join(current, part)
		}

		if existing, exists := mfs.files[current]; exists {
			if !existing.IsDir {
				return &fs.PathError{Op: "mkdir", Path: current, Err: errors.New("not a directory")}
			}
			continue
		}

		mfs.files[current] = &MockFile{
			Mode:    perm | fs.ModeDir,
			ModTime: time.Now(),
			IsDir:   true,
		}
	}
	return nil
}

func (mfs *MockFileSystem) RemoveAll(path string) error {
	cleanPath := filepath.Clean(path)
	prefix := cleanPath + string(filepath.Separator)

	for p := range mfs.files {
		if p == cleanPath || strings.HasPrefix(p, prefix) {
			delete(mfs.files, p)
		}
	}
	return nil
}

func (mfs *MockFileSystem) Rename(oldPath, newPath string) error {
	cleanOld := filepath.Clean(oldPath)
	cleanNew := filepath.Clean(newPath)

	if _, exists := mfs.files[cleanOld]; !exists {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	if _, exists := mfs.files[cleanNew]; exists {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrExist}
	}
	if !mfs.parentExists(cleanNew) {
		return &fs.PathError{Op: "rename", Path: newPath, Err: fs.ErrNotExist}
	}

	prefix := cleanOld + string(filepath.Separator)
	moved := make(map[string]*MockFile)
	for p, f := range mfs.files {
		if p == cleanOld {
			moved[cleanNew] = f
			delete(mfs.files, p)
		} else if strings.HasPrefix(p, prefix) {
			moved[cleanNew+string(filepath.Separator)+strings.TrimPrefix(p, prefix)] = f
			delete(mfs.files, p)
		}
	}
	for p, f := range moved {
		mfs.files[p] = f
	}
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, fs.ErrNotExist
	}

	return mfs.info(cleanPath, file), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

func (mfs *MockFileSystem) IsDir(path string) bool {
	file, exists := mfs.files[filepath.Clean(path)]
	return exists && file.IsDir
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	return mfs.currentDir, nil
}

func (mfs *MockFileSystem) TempDir() string {
	return mfs.tempDir
}

func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	cleanRoot := filepath.Clean(root)

	if _, exists := mfs.files[cleanRoot]; !exists {
		return fs.ErrNotExist
	}

	// Collect all paths that are under root
	var paths []string
	for p := range mfs.files {
		if p == cleanRoot || strings.HasPrefix(p, cleanRoot+string(filepath.Separator)) {
			paths = append(paths, p)
		}
	}

	// Sort paths for consistent ordering
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if underAny(p, skipped) {
			continue
		}

		file := mfs.files[p]
		entry := &mockDirEntry{info: mfs.info(p, file)}

		if err := fn(p, entry, nil); err != nil {
			if err == filepath.SkipDir {
				if file.IsDir {
					skipped = append(skipped, p)
					continue
				}
				// SkipDir on a file skips the rest of its directory
				skipped = append(skipped, filepath.Dir(p))
				continue
			}
			if err == filepath.SkipAll {
				return nil
			}
			return err
		}
	}

	return nil
}

func underAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	var matches []string

	for p := range mfs.files {
		matched, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

func (mfs *MockFileSystem) info(p string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(p),
		size:    int64(len(f.Content)),
		mode:    f.Mode,
		modTime: f.ModTime,
		isDir:   f.IsDir,
	}
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.currentDir = dir
}

// SetTempDir sets the directory returned by TempDir
func (mfs *MockFileSystem) SetTempDir(dir string) {
	mfs.tempDir = dir
}

// GetFiles returns all files in the mock filesystem (for debugging)
func (mfs *MockFileSystem) GetFiles() map[string]*MockFile {
	return mfs.files
}

// Paths returns every path under root, sorted, relative to root.
func (mfs *MockFileSystem) Paths(root string) []string {
	cleanRoot := filepath.Clean(root)
	prefix := cleanRoot + string(filepath.Separator)

	var paths []string
	for p := range mfs.files {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, filepath.ToSlash(strings.TrimPrefix(p, prefix)))
		}
	}
	sort.Strings(paths)
	return paths
}
