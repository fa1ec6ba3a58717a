package materialize

import (
	"path/filepath"
	"testing"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/stretchr/testify/require"
)

func stagedBundle() *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/tmp/stage/build/Calc/warn-Calc.txt", []byte("warnings"))
	fs.AddFile("/tmp/stage/dist/Calc/Calc.exe", []byte("MZ new"))
	fs.AddFile("/tmp/stage/dist/Calc/_internal/data_files/limits.xlsx", []byte("xlsx"))
	fs.AddDir("/project")
	return fs
}

func TestMaterialize_CopiesAndRenames(t *testing.T) {
	fs := stagedBundle()

	result, err := New(fs).Materialize("/tmp/stage", "/project", "Calc", "Rechner")
	require.NoError(t, err)
	require.True(t, result.Renamed)
	require.Equal(t, filepath.Join("/project", "dist", "Rechner"), result.BundleDir)
	require.Equal(t, 3, result.Files)

	require.Equal(t, []string{
		"build",
		"build/Calc",
		"build/Calc/warn-Calc.txt",
		"dist",
		"dist/.freeze-bundle",
		"dist/Rechner",
		"dist/Rechner/Calc.exe",
		"dist/Rechner/_internal",
		"dist/Rechner/_internal/data_files",
		"dist/Rechner/_internal/data_files/limits.xlsx",
	}, fs.Paths("/project"))

	// the staged copy is left for cleanup
	require.True(t, fs.Exists("/tmp/stage/dist/Calc/Calc.exe"))

	dir, ok := LastBundle(fs, "/project")
	require.True(t, ok)
	require.Equal(t, result.BundleDir, dir)
}

func TestMaterialize_TakenLocalizedFolderLeavesProjectUntouched(t *testing.T) {
	fs := stagedBundle()
	fs.AddFile("/project/dist/Rechner/Calc.exe", []byte("MZ old"))
	fs.AddFile("/project/dist/.freeze-bundle", []byte("Rechner\n"))
	before := fs.Paths("/project")

	_, err := New(fs).Materialize("/tmp/stage", "/project", "Calc", "Rechner")
	require.ErrorIs(t, err, ErrLocalizedExists)
	require.Contains(t, err.Error(), "freeze clean")

	require.Equal(t, before, fs.Paths("/project"))
	old, err := fs.ReadFile("/project/dist/Rechner/Calc.exe")
	require.NoError(t, err)
	require.Equal(t, "MZ old", string(old))
}

func TestMaterialize_RepeatedRunsNeverLeaveTwoBundles(t *testing.T) {
	fs := stagedBundle()
	m := New(fs)

	_, err := m.Materialize("/tmp/stage", "/project", "Calc", "Rechner")
	require.NoError(t, err)

	fs.AddFile("/tmp/stage/dist/Calc/Calc.exe", []byte("MZ second"))
	_, err = m.Materialize("/tmp/stage", "/project", "Calc", "Rechner")
	require.ErrorIs(t, err, ErrLocalizedExists)

	require.False(t, fs.Exists("/project/dist/Calc"))
	data, err := fs.ReadFile("/project/dist/Rechner/Calc.exe")
	require.NoError(t, err)
	require.Equal(t, "MZ new", string(data))
}

func TestMaterialize_ReplacesPreviousBundle(t *testing.T) {
	fs := stagedBundle()
	fs.AddFile("/project/dist/Calc/Calc.exe", []byte("MZ old"))
	fs.AddFile("/project/dist/Calc/stale.dll", []byte("dll"))
	fs.AddFile("/project/build/Calc/old.toc", []byte("toc"))
	fs.AddFile("/project/dist/Calc-v1.zip", []byte("zip"))

	result, err := New(fs).Materialize("/tmp/stage", "/project", "Calc", "")
	require.NoError(t, err)
	require.False(t, result.Renamed)

	data, err := fs.ReadFile("/project/dist/Calc/Calc.exe")
	require.NoError(t, err)
	require.Equal(t, "MZ new", string(data))
	require.False(t, fs.Exists("/project/dist/Calc/stale.dll"))
	require.False(t, fs.Exists("/project/build/Calc/old.toc"))
	require.True(t, fs.Exists("/project/dist/Calc-v1.zip"), "unrelated dist entries stay")

	dir, ok := LastBundle(fs, "/project")
	require.True(t, ok)
	require.Equal(t, filepath.Join("/project", "dist", "Calc"), dir)
}

func TestLastBundle(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/project/dist/Calc")

	_, ok := LastBundle(fs, "/project")
	require.False(t, ok, "no marker")

	fs.AddFile("/project/dist/.freeze-bundle", []byte("Rechner\n"))
	_, ok = LastBundle(fs, "/project")
	require.False(t, ok, "marker names a folder that is gone")

	fs.AddFile("/project/dist/.freeze-bundle", []byte("../Calc\n"))
	_, ok = LastBundle(fs, "/project")
	require.False(t, ok)

	fs.AddFile("/project/dist/.freeze-bundle", []byte("Calc\n"))
	dir, ok := LastBundle(fs, "/project")
	require.True(t, ok)
	require.Equal(t, filepath.Join("/project", "dist", "Calc"), dir)
}

func TestMaterialize_MissingBundle(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/tmp/stage/dist")
	fs.AddDir("/project")

	_, err := New(fs).Materialize("/tmp/stage", "/project", "Calc", "Rechner")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing after copy")
}
