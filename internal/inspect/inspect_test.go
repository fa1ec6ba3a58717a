package inspect

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/stretchr/testify/require"
)

func sampleTree() *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/repo/main_app/gui_mainwindow.py", []byte("import sys\n"))
	fs.AddFile("/repo/main_app/Path_Manager.py", []byte("import os\n"))
	fs.AddFile("/repo/core_functions/step1_rawdata_analysis.py", []byte("import csv\n"))
	fs.AddFile("/repo/packaging/build_isolated.bat", []byte("@echo off\r\n"))
	fs.AddFile("/repo/requirements.txt", []byte("PyQt5\nnumpy\n"))
	fs.AddDir("/repo/data_files")
	return fs
}

func TestInspect_Searches(t *testing.T) {
	report, err := New(sampleTree()).Inspect("/repo", Options{})
	require.NoError(t, err)

	require.Equal(t, []Matches{
		{Term: "*.py", Paths: []string{"core_functions/step1_rawdata_analysis.py", "main_app/Path_Manager.py", "main_app/gui_mainwindow.py"}},
		{Term: "*.spec", Paths: []string{}},
		{Term: "*.bat", Paths: []string{"packaging/build_isolated.bat"}},
	}, report.Extensions)

	require.Equal(t, []Matches{
		{Term: "main", Paths: []string{"main_app/gui_mainwindow.py"}},
		{Term: "gui", Paths: []string{"main_app/gui_mainwindow.py"}},
		{Term: "path_manager", Paths: []string{"main_app/Path_Manager.py"}},
		{Term: "requirements", Paths: []string{"requirements.txt"}},
		{Term: "setup", Paths: []string{}},
	}, report.Keywords)

	var dirs []string
	for _, l := range report.Subdirs {
		dirs = append(dirs, l.Dir)
	}
	require.Equal(t, []string{"core_functions", "data_files", "main_app", "packaging"}, dirs)
	require.Empty(t, report.Subdirs[1].Entries)
}

func TestInspect_CustomTerms(t *testing.T) {
	report, err := New(sampleTree()).Inspect("/repo", Options{
		Extensions: []string{"txt", "*.BAT"},
		Keywords:   []string{"STEP"},
	})
	require.NoError(t, err)

	require.Equal(t, "*.txt", report.Extensions[0].Term)
	require.Equal(t, []string{"requirements.txt"}, report.Extensions[0].Paths)
	require.Equal(t, []string{"packaging/build_isolated.bat"}, report.Extensions[1].Paths)
	require.Equal(t, []string{"core_functions/step1_rawdata_analysis.py"}, report.Keywords[0].Paths)
}

func TestInspect_DoesNotMutate(t *testing.T) {
	fs := sampleTree()
	before := fs.Paths("/repo")

	_, err := New(fs).Inspect("/repo", Options{})
	require.NoError(t, err)
	require.Equal(t, before, fs.Paths("/repo"))
}

func TestInspect_NotADirectory(t *testing.T) {
	_, err := New(sampleTree()).Inspect("/repo/requirements.txt", Options{})
	require.Error(t, err)
}

func TestRenderText(t *testing.T) {
	report, err := New(sampleTree()).Inspect("/repo", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	RenderText(&buf, report)

	out := buf.String()
	require.Contains(t, out, "*.spec: none found")
	require.Contains(t, out, "setup: not found")
	require.Contains(t, out, "└─ requirements.txt")
	snaps.MatchSnapshot(t, out)
}

func TestRenderJSON(t *testing.T) {
	report, err := New(sampleTree()).Inspect("/repo", Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, report))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, report.Keywords, decoded.Keywords)
}
