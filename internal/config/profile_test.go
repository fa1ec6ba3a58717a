package config

import (
	"testing"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/stretchr/testify/require"
)

func TestProfileManager_ReadAll(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/project/.freeze/profiles/debug.md", []byte("---\nwindowed: false\n---\n\nConsole build for tracing Qt plugin loading.\n"))
	fs.AddFile("/project/.freeze/profiles/release.md", []byte("---\nlocalized_name: Release\ndependency_policy: fail-fast\n---\nShipping build.\n"))
	fs.AddFile("/project/.freeze/profiles/notes.txt", []byte("ignored"))

	profiles, err := NewProfileManager(fs, "/project").ReadAll()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	require.Equal(t, "debug", profiles[0].Name)
	require.Equal(t, "Console build for tracing Qt plugin loading.", profiles[0].Description)
	require.Equal(t, "release", profiles[1].Name)
}

func TestProfileManager_ReadAll_NoDirectory(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/project")

	profiles, err := NewProfileManager(fs, "/project").ReadAll()
	require.NoError(t, err)
	require.Empty(t, profiles)
}

func TestProfile_Apply(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/project/.freeze/profiles/lite.md", []byte(`---
name: CalcLite
windowed: false
dependency_policy: fail-fast
collect_all:
  - PyQt5
dependencies:
  - PyQt5
  - numpy
---
Smaller bundle without plotting.
`))

	profile, err := NewProfileManager(fs, "/project").Read("lite")
	require.NoError(t, err)

	base := Default()
	cfg, err := profile.Apply(base)
	require.NoError(t, err)

	require.Equal(t, "CalcLite", cfg.Name)
	require.False(t, cfg.Windowed)
	require.Equal(t, models.PolicyFailFast, cfg.DependencyPolicy)
	require.Equal(t, []string{"PyQt5"}, cfg.CollectAll)
	require.Equal(t, []string{"PyQt5", "numpy"}, cfg.Dependencies)

	// the base config is left alone
	require.Equal(t, "VoltageCalculator", base.Name)
	require.True(t, base.Windowed)
}

func TestProfileManager_Read_Missing(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/project")

	_, err := NewProfileManager(fs, "/project").Read("nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "profile nope not found")
}

func TestParseProfile_InvalidPolicy(t *testing.T) {
	_, err := ParseProfile("/p/bad.md", []byte("---\ndependency_policy: whenever\n---\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid dependency policy")
}
