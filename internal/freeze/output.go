package freeze

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
)

// Output directories written by PyInstaller below its working directory.
const (
	BuildDir = "build"
	DistDir  = "dist"
)

// BundleDir is the one-folder bundle below dir
func BundleDir(dir, name string) string {
	return filepath.Join(dir, DistDir, name)
}

// ArtifactPath is the executable inside the bundle.
func ArtifactPath(dir, name, goos string) string {
	exe := name
	if goos == "windows" {
		exe += ".exe"
	}
	return filepath.Join(BundleDir(dir, name), exe)
}

// CleanOutputs removes build/, dist/ and *.spec from dir so no earlier
// result can be mistaken for a new one.
func CleanOutputs(fs filesystem.FileSystem, dir string) error {
	for _, sub := range []string{BuildDir, DistDir} {
		if err := fs.RemoveAll(filepath.Join(dir, sub)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", sub, err)
		}
	}

	specs, err := fs.Glob(filepath.Join(dir, "*.spec"))
	if err != nil {
		return fmt.Errorf("failed to list spec files: %w", err)
	}
	for _, spec := range specs {
		if err := fs.Remove(spec); err != nil {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(spec), err)
		}
	}

	return nil
}
