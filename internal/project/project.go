package project

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
)

// maxLayoutDepth bounds how far Detect climbs when relying on layout markers.
const maxLayoutDepth = 6

// Detect finds the project root starting at the current directory.
//
// A directory holding freeze.yaml always wins. Otherwise the first directory
// within maxLayoutDepth levels that looks like the application layout is
// used: it has data_files/, or both main_app/ and core_functions/.
func Detect(fs filesystem.FileSystem) (*models.Project, error) {
	cwd, err := fs.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return DetectFrom(fs, cwd)
}

// DetectFrom is Detect with an explicit starting directory.
func DetectFrom(fs filesystem.FileSystem, start string) (*models.Project, error) {
	start = filepath.Clean(start)

	if configPath, found := findFileUp(fs, start, config.FileName); found {
		return models.NewProject(filepath.Dir(configPath), configPath), nil
	}

	dir := start
	for i := 0; i < maxLayoutDepth; i++ {
		if looksLikeApp(fs, dir) {
			return models.NewProject(dir, ""), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return nil, fmt.Errorf("project not found: no %s or application layout above %s", config.FileName, start)
}

func looksLikeApp(fs filesystem.FileSystem, dir string) bool {
	if fs.IsDir(filepath.Join(dir, "data_files")) {
		return true
	}
	return fs.IsDir(filepath.Join(dir, "main_app")) && fs.IsDir(filepath.Join(dir, "core_functions"))
}
