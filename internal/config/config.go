package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file at the project root.
const FileName = "freeze.yaml"

// DataMapping maps a project directory into the frozen bundle.
type DataMapping struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest,omitempty"`
}

// Target returns the in-bundle destination, which always uses forward slashes.
func (d DataMapping) Target() string {
	if d.Dest != "" {
		return filepath.ToSlash(d.Dest)
	}
	return filepath.ToSlash(d.Src)
}

// Config describes how a project is frozen.
type Config struct {
	Name             string                  `yaml:"name"`
	LocalizedName    string                  `yaml:"localized_name,omitempty"`
	Lang             string                  `yaml:"lang,omitempty"`
	Entry            string                  `yaml:"entry"`
	Paths            []string                `yaml:"paths"`
	Data             []DataMapping           `yaml:"data"`
	CollectAll       []string                `yaml:"collect_all"`
	Dependencies     []string                `yaml:"dependencies"`
	Exclude          []string                `yaml:"exclude,omitempty"`
	Windowed         bool                    `yaml:"windowed"`
	Python           string                  `yaml:"python,omitempty"`
	MinPython        string                  `yaml:"min_python"`
	StagingName      string                  `yaml:"staging_name,omitempty"`
	StagingParent    string                  `yaml:"staging_parent,omitempty"`
	LogNameTemplate  string                  `yaml:"log_name_template"`
	DependencyPolicy models.DependencyPolicy `yaml:"dependency_policy"`
	MinFreeSpace     string                  `yaml:"min_free_space"`
	Env              map[string]string       `yaml:"env,omitempty"`
}

// Default returns the configuration of the voltage range calculator layout.
func Default() *Config {
	return &Config{
		Name:  "VoltageCalculator",
		Entry: "main_app/gui_mainwindow.py",
		Paths: []string{"main_app", "core_functions"},
		Data: []DataMapping{
			{Src: "data_files"},
			{Src: "resources"},
			{Src: "styles"},
			{Src: "icons"},
		},
		CollectAll:       []string{"PyQt5", "matplotlib", "numpy", "pandas"},
		Dependencies:     []string{"PyQt5", "numpy", "matplotlib", "pandas", "openpyxl", "Pillow"},
		Windowed:         true,
		MinPython:        "3.8",
		LogNameTemplate:  `build_{{ .Time | date "20060102_150405" }}.log`,
		DependencyPolicy: models.PolicyBestEffort,
		MinFreeSpace:     "1 GB",
	}
}

// Load reads freeze.yaml from root and merges it over Default. A missing
// file yields the defaults.
func Load(fs filesystem.FileSystem, root string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(root, FileName)
	if !fs.Exists(path) {
		return cfg, nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg, nil
}

// Save writes cfg as freeze.yaml into root.
func Save(fs filesystem.FileSystem, root string, cfg *Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(root, FileName)
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", FileName, err)
	}

	return path, nil
}

// Validate checks the configuration for values that would break a build.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	} else if strings.ContainsAny(c.Name, `/\:*?"<>|`) {
		errs = append(errs, fmt.Errorf("name %q contains path characters", c.Name))
	}

	if strings.TrimSpace(c.Entry) == "" {
		errs = append(errs, errors.New("entry is required"))
	} else if err := checkRelative("entry", c.Entry); err != nil {
		errs = append(errs, err)
	}

	for _, p := range c.Paths {
		if err := checkRelative("paths", p); err != nil {
			errs = append(errs, err)
		}
	}

	for _, d := range c.Data {
		if err := checkRelative("data.src", d.Src); err != nil {
			errs = append(errs, err)
		}
		if d.Dest != "" {
			if err := checkRelative("data.dest", d.Dest); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if c.StagingParent != "" && !filepath.IsAbs(c.StagingParent) {
		errs = append(errs, fmt.Errorf("staging_parent: %s must be an absolute path", c.StagingParent))
	}

	if !c.DependencyPolicy.IsValid() {
		errs = append(errs, fmt.Errorf("invalid dependency_policy: %s (must be fail-fast or best-effort)", c.DependencyPolicy))
	}

	if strings.TrimSpace(c.LogNameTemplate) == "" {
		errs = append(errs, errors.New("log_name_template is required"))
	}

	if _, err := c.MinFreeBytes(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func checkRelative(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s: empty path", field)
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return fmt.Errorf("%s: %s must be relative to the project root", field, p)
	}
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s: %s escapes the project root", field, p)
	}
	return nil
}

// StagingDir returns the fixed staging directory below StagingParent, or
// below tempDir when no parent is configured.
func (c *Config) StagingDir(tempDir string) string {
	name := c.StagingName
	if name == "" {
		name = fmt.Sprintf("freeze_%s_build", c.Name)
	}

	parent := tempDir
	if c.StagingParent != "" {
		parent = c.StagingParent
	}
	return filepath.Join(parent, name)
}

// MinFreeBytes parses MinFreeSpace; empty disables the disk space probe.
func (c *Config) MinFreeBytes() (uint64, error) {
	if strings.TrimSpace(c.MinFreeSpace) == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.MinFreeSpace)
	if err != nil {
		return 0, fmt.Errorf("invalid min_free_space %q: %w", c.MinFreeSpace, err)
	}
	return n, nil
}

// EnvList returns the extra environment as sorted KEY=VALUE pairs.
func (c *Config) EnvList() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Env[k])
	}
	return out
}
