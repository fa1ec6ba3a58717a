package models

// Project represents the Python application being packaged.
type Project struct {
	// RootPath is the absolute path to the project root
	RootPath string

	// ConfigPath is the path to freeze.yaml; empty when the root was
	// detected from the application layout
	ConfigPath string
}

// NewProject creates a new Project instance
func NewProject(rootPath, configPath string) *Project {
	return &Project{
		RootPath:   rootPath,
		ConfigPath: configPath,
	}
}

// HasConfig reports whether the project carries its own freeze.yaml.
func (p *Project) HasConfig() bool {
	return p.ConfigPath != ""
}
