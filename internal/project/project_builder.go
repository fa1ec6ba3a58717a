package project

import (
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
)

// ProjectBuilder helps create test projects
type ProjectBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewProjectBuilder creates a ProjectBuilder with the application layout
// (main_app/, core_functions/, data_files/) and an entry point.
func NewProjectBuilder(root string) *ProjectBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.SetCurrentDir(root)

	pb := &ProjectBuilder{
		fs:   fs,
		root: root,
	}

	pb.AddFile("main_app/gui_mainwindow.py", "import sys\n")
	pb.AddFile("main_app/path_manager.py", "import os\n")
	pb.AddFile("core_functions/step1_rawdata_analysis.py", "import csv\n")
	pb.AddDir("data_files")

	return pb
}

// AddFile adds a file relative to the project root
func (pb *ProjectBuilder) AddFile(rel, content string) *ProjectBuilder {
	pb.fs.AddFile(filepath.Join(pb.root, filepath.FromSlash(rel)), []byte(content))
	return pb
}

// AddDir adds a directory relative to the project root
func (pb *ProjectBuilder) AddDir(rel string) *ProjectBuilder {
	pb.fs.AddDir(filepath.Join(pb.root, filepath.FromSlash(rel)))
	return pb
}

// RemoveEntry deletes the default entry point
func (pb *ProjectBuilder) RemoveEntry() *ProjectBuilder {
	_ = pb.fs.Remove(filepath.Join(pb.root, "main_app", "gui_mainwindow.py"))
	return pb
}

// WithConfig writes freeze.yaml
func (pb *ProjectBuilder) WithConfig(content string) *ProjectBuilder {
	return pb.AddFile("freeze.yaml", content)
}

// WithProfile writes .freeze/profiles/<name>.md
func (pb *ProjectBuilder) WithProfile(name, content string) *ProjectBuilder {
	return pb.AddFile(".freeze/profiles/"+name+".md", content)
}

// Root returns the project root
func (pb *ProjectBuilder) Root() string {
	return pb.root
}

// Build returns the configured filesystem
func (pb *ProjectBuilder) Build() *filesystem.MockFileSystem {
	return pb.fs
}
