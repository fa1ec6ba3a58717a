package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
)

// ProfileDir is where build profiles live, relative to the project root.
const ProfileDir = ".freeze/profiles"

// Profile is a named set of overrides stored as a markdown file whose
// frontmatter holds the overrides and whose body describes the profile.
type Profile struct {
	Name        string
	Description string
	FilePath    string

	matter profileMatter
}

type profileMatter struct {
	Name             *string  `yaml:"name"`
	LocalizedName    *string  `yaml:"localized_name"`
	Windowed         *bool    `yaml:"windowed"`
	DependencyPolicy *string  `yaml:"dependency_policy"`
	CollectAll       []string `yaml:"collect_all"`
	Dependencies     []string `yaml:"dependencies"`
}

// ProfileManager reads build profiles from a project
type ProfileManager struct {
	fs  filesystem.FileSystem
	dir string
}

// NewProfileManager creates a manager for the profiles below root
func NewProfileManager(fs filesystem.FileSystem, root string) *ProfileManager {
	return &ProfileManager{
		fs:  fs,
		dir: filepath.Join(root, filepath.FromSlash(ProfileDir)),
	}
}

// ReadAll reads every profile, sorted by name
func (m *ProfileManager) ReadAll() ([]*Profile, error) {
	if !m.fs.Exists(m.dir) {
		return []*Profile{}, nil
	}

	entries, err := m.fs.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile directory: %w", err)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		profile, err := m.read(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

// Read reads the profile called name
func (m *ProfileManager) Read(name string) (*Profile, error) {
	path := filepath.Join(m.dir, name+".md")
	if !m.fs.Exists(path) {
		return nil, fmt.Errorf("profile %s not found in %s", name, ProfileDir)
	}
	return m.read(path)
}

func (m *ProfileManager) read(path string) (*Profile, error) {
	data, err := m.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	return ParseProfile(path, data)
}

// ParseProfile parses profile data from bytes
func ParseProfile(path string, data []byte) (*Profile, error) {
	var matter profileMatter
	rest, err := frontmatter.Parse(bytes.NewReader(data), &matter)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter of %s: %w", filepath.Base(path), err)
	}

	if matter.DependencyPolicy != nil {
		if _, err := models.ParseDependencyPolicy(*matter.DependencyPolicy); err != nil {
			return nil, fmt.Errorf("profile %s: %w", filepath.Base(path), err)
		}
	}

	return &Profile{
		Name:        strings.TrimSuffix(filepath.Base(path), ".md"),
		Description: strings.TrimSpace(string(rest)),
		FilePath:    path,
		matter:      matter,
	}, nil
}

// Apply returns a copy of cfg with the profile's overrides applied.
func (p *Profile) Apply(cfg *Config) (*Config, error) {
	out := *cfg

	if p.matter.Name != nil {
		out.Name = *p.matter.Name
	}
	if p.matter.LocalizedName != nil {
		out.LocalizedName = *p.matter.LocalizedName
	}
	if p.matter.Windowed != nil {
		out.Windowed = *p.matter.Windowed
	}
	if p.matter.DependencyPolicy != nil {
		out.DependencyPolicy = models.DependencyPolicy(*p.matter.DependencyPolicy)
	}
	if p.matter.CollectAll != nil {
		out.CollectAll = append([]string(nil), p.matter.CollectAll...)
	}
	if p.matter.Dependencies != nil {
		out.Dependencies = append([]string(nil), p.matter.Dependencies...)
	}

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}

	return &out, nil
}
