package buildlog

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/stretchr/testify/require"
)

const defaultTemplate = `build_{{ .Time | date "20060102_150405" }}.log`

func TestRenderName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	name, err := RenderName(defaultTemplate, now)
	require.NoError(t, err)
	require.Equal(t, "build_20240309_140507.log", name)

	name, err = RenderName(`{{ "Calc" | lower }}-{{ .Time | date "2006" }}.txt`, now)
	require.NoError(t, err)
	require.Equal(t, "calc-2024.txt", name)
}

func TestRenderName_Rejects(t *testing.T) {
	now := time.Now()

	_, err := RenderName("{{ .Nope", now)
	require.Error(t, err)

	_, err = RenderName("   ", now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty name")

	_, err = RenderName("logs/build.log", now)
	require.Error(t, err)
	require.Contains(t, err.Error(), "path separators")
}

func TestLogger_MirrorsConsoleIntoFile(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir("/project")

	var console bytes.Buffer
	l, err := New(fs, Options{
		Root:         "/project",
		NameTemplate: defaultTemplate,
		Now:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local),
		RunID:        "abcd1234",
		Console:      &console,
	})
	require.NoError(t, err)

	l.SetStage(models.StageMirror)
	l.Step("mirroring %s", "/project")
	l.Warn("skipping %d missing data directories", 2)
	l.Error("entry file not found: %s", "main.py")
	fmt.Fprintln(l.Output(false), "raw tool output")
	require.NoError(t, l.Close())

	require.Equal(t, filepath.Join("/project", DirName, "build_20240102_030405.log"), l.Path())

	data, err := fs.ReadFile(l.Path())
	require.NoError(t, err)
	content := string(data)

	require.Contains(t, content, "run_id=abcd1234")
	require.Contains(t, content, "stage=mirror")
	require.Contains(t, content, `msg="mirroring /project"`)
	require.Contains(t, content, "level=warning")
	require.Contains(t, content, `msg="entry file not found: main.py"`)
	require.Contains(t, content, "raw tool output\n")

	require.Contains(t, console.String(), "mirroring /project")
	require.Contains(t, console.String(), "entry file not found: main.py")
	require.NotContains(t, console.String(), "raw tool output")
}

func TestLogger_AppendsToExistingFile(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/project/build_logs/fixed.log", []byte("previous run\n"))

	l, err := New(fs, Options{Root: "/project", NameTemplate: "fixed.log", Now: time.Now()})
	require.NoError(t, err)
	l.Info("second run")
	require.NoError(t, l.Close())

	data, err := fs.ReadFile("/project/build_logs/fixed.log")
	require.NoError(t, err)
	require.Regexp(t, `^previous run\n.*second run`, string(data))
}
