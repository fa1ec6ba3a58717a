package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"
	"time"

	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
	"github.com/jakoblorz/go-freeze/internal/materialize"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/process"
	"github.com/jakoblorz/go-freeze/internal/project"
	"github.com/jakoblorz/go-freeze/internal/python"
	"github.com/stretchr/testify/require"
)

const (
	root       = "/project"
	stagingDir = "/tmp/freeze_VoltageCalculator_build"
)

type harness struct {
	fs      *filesystem.MockFileSystem
	runner  *process.MockRunner
	orch    *Orchestrator
	console *bytes.Buffer

	// staged is the staging tree as PyInstaller saw it
	staged []string
}

func newHarness(t *testing.T, pb *project.ProjectBuilder) *harness {
	t.Helper()

	h := &harness{
		fs:      pb.Build(),
		runner:  process.NewMockRunner(),
		console: &bytes.Buffer{},
	}

	h.runner.SetPath("python", "/usr/bin/python")
	h.runner.On(process.HasArgs("--version"), process.Print("Python 3.11.4\n"))
	h.runner.On(process.HasArgs("PyInstaller", "--version"), process.Print("6.3.0\n"))
	h.runner.On(process.HasArgs("PyInstaller", "--noconfirm"), h.producesBundle("VoltageCalculator"))

	h.orch = New(h.fs, h.runner).WithFreeSpace(nil)
	h.orch.newRunID = func() (string, error) { return "steady_relay_ABCD1234", nil }
	return h
}

// producesBundle fakes a successful PyInstaller run in cmd.Dir.
func (h *harness) producesBundle(name string) process.Handler {
	return func(cmd process.Command) (int, error) {
		h.staged = h.fs.Paths(cmd.Dir)
		_, _ = cmd.Stdout.Write([]byte("INFO: Building COLLECT completed successfully.\n"))
		h.fs.AddFile(filepath.Join(cmd.Dir, "build", name, "warn-"+name+".txt"), []byte("no warnings"))
		h.fs.AddFile(freeze.ArtifactPath(cmd.Dir, name, runtime.GOOS), []byte("MZ fresh"))
		h.fs.AddFile(filepath.Join(cmd.Dir, "dist", name, "_internal", "data_files", "limits.xlsx"), []byte("xlsx"))
		return 0, nil
	}
}

func (h *harness) run(t *testing.T, opts Options) (*models.BuildReport, error) {
	t.Helper()

	if opts.Root == "" {
		opts.Root = root
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	opts.Console = h.console
	opts.Now = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

	return h.orch.Run(context.Background(), opts)
}

func (h *harness) logContent(t *testing.T, report *models.BuildReport) string {
	t.Helper()

	data, err := h.fs.ReadFile(report.LogPath)
	require.NoError(t, err)
	return string(data)
}

func isFreeze(c process.Command) bool {
	return process.HasArgs("PyInstaller", "--noconfirm")(c)
}

func isPip(c process.Command) bool {
	return process.HasArgs("pip", "install")(c)
}

func isVenv(c process.Command) bool {
	return process.HasArgs("-m", "venv")(c)
}

func TestRun_Success(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))

	report, err := h.run(t, Options{LocalizedName: "电压范围计算器"})
	require.NoError(t, err)

	require.Equal(t, models.OutcomeSucceeded, report.Outcome)
	require.Equal(t, "steady_relay_ABCD1234", report.RunID)
	require.Equal(t, filepath.Join(root, "build_logs", "build_20240309_140507.log"), report.LogPath)
	require.Equal(t, stagingDir, report.StagingDir)
	require.True(t, report.Renamed)
	require.Equal(t, filepath.Join(root, "dist", "电压范围计算器"), report.BundleDir)

	var stages []models.Stage
	for _, s := range report.Stages {
		require.Empty(t, s.Err, "stage %s", s.Stage)
		stages = append(stages, s.Stage)
	}
	require.Equal(t, []models.Stage{
		models.StageCheckRuntime,
		models.StageCreate,
		models.StageMirror,
		models.StageVerifyEntry,
		models.StageProvisionDeps,
		models.StageInvoke,
		models.StageMaterialize,
		models.StageCleanup,
	}, stages)

	// the staging directory is gone and exactly one bundle exists
	require.False(t, h.fs.Exists(stagingDir))
	require.True(t, h.fs.IsDir(filepath.Join(root, "dist", "电压范围计算器")))
	require.False(t, h.fs.Exists(filepath.Join(root, "dist", "VoltageCalculator")))
	require.True(t, h.fs.Exists(filepath.Join(root, "build", "VoltageCalculator", "warn-VoltageCalculator.txt")))

	// optional data directories missing from the project are skipped
	require.Len(t, report.Warnings, 3)
	require.Contains(t, report.Warnings[0], "data directory resources not found")

	var freezeCall process.Command
	for _, c := range h.runner.Calls() {
		if isFreeze(c) {
			freezeCall = c
		}
	}
	require.Equal(t, stagingDir, freezeCall.Dir)
	require.Equal(t, python.VenvPython(filepath.Join(stagingDir, ".venv"), runtime.GOOS), freezeCall.Name)
	require.Contains(t, freezeCall.Args, "data_files"+string(filepath.ListSeparator)+"data_files")
	require.NotContains(t, freezeCall.Args, "resources"+string(filepath.ListSeparator)+"resources")
	require.Contains(t, freezeCall.Env, "PYINSTALLER_STRICT_COLLECT_MODE=0")
	require.Equal(t, filepath.FromSlash("main_app/gui_mainwindow.py"), freezeCall.Args[len(freezeCall.Args)-1])

	log := h.logContent(t, report)
	require.Contains(t, log, "run_id=steady_relay_ABCD1234")
	require.Contains(t, log, "stage=check-runtime")
	require.Contains(t, log, "INFO: Building COLLECT completed successfully.")
	require.Contains(t, log, "build complete")

	require.Contains(t, h.console.String(), "build complete")
	require.NotContains(t, h.console.String(), "Building COLLECT", "tool output only goes to the log unless verbose")
}

func TestRun_InstallsIntoIsolatedEnvironment(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))

	_, err := h.run(t, Options{})
	require.NoError(t, err)

	var pipArgs [][]string
	venvPython := python.VenvPython(filepath.Join(stagingDir, ".venv"), runtime.GOOS)
	for _, c := range h.runner.Calls() {
		if isVenv(c) {
			require.Equal(t, "/usr/bin/python", c.Name)
			require.Equal(t, filepath.Join(stagingDir, ".venv"), c.Args[len(c.Args)-1])
		}
		if isPip(c) {
			require.Equal(t, venvPython, c.Name, "pip must run from the staged venv")
			pipArgs = append(pipArgs, c.Args[4:])
		}
	}

	require.Equal(t, [][]string{
		{"--upgrade", "pip"},
		{"pyinstaller"},
		{"PyQt5"},
		{"numpy"},
		{"matplotlib"},
		{"pandas"},
		{"openpyxl"},
		{"Pillow"},
	}, pipArgs)
}

func TestRun_ExcludedDirectoriesNeverStaged(t *testing.T) {
	pb := project.NewProjectBuilder(root).
		AddFile(".git/HEAD", "ref: refs/heads/main\n").
		AddFile(".venv/pyvenv.cfg", "home = C:\\Python311\n").
		AddFile("venv/pyvenv.cfg", "home = C:\\Python311\n").
		AddFile("build/VoltageCalculator/old.txt", "old").
		AddFile("dist/VoltageCalculator/VoltageCalculator.exe", "MZ old").
		AddFile("build_logs/build_20240101_000000.log", "old log").
		AddFile("main_app/__pycache__/gui_mainwindow.cpython-311.pyc", "pyc").
		AddFile(".pytest_cache/v/cache/nodeids", "[]").
		AddFile("VoltageCalculator.spec", "# old spec")
	h := newHarness(t, pb)

	_, err := h.run(t, Options{})
	require.NoError(t, err)

	require.NotEmpty(t, h.staged)
	for _, p := range h.staged {
		for _, banned := range []string{".git", ".venv", "venv", "build", "dist", "build_logs", "__pycache__", ".pytest_cache"} {
			require.NotEqual(t, banned, p)
			require.NotRegexp(t, `(^|/)`+regexp.QuoteMeta(banned)+`(/|$)`, p)
		}
		require.NotEqual(t, "VoltageCalculator.spec", p)
	}
	require.Contains(t, h.staged, "main_app/gui_mainwindow.py")
	require.Contains(t, h.staged, "core_functions/step1_rawdata_analysis.py")
}

func TestRun_MissingEntryPoint(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root).RemoveEntry())

	report, err := h.run(t, Options{})
	require.Error(t, err)

	var buildErr *models.BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, models.StageVerifyEntry, buildErr.Stage)
	require.Equal(t, models.ExitFailure, models.ExitCode(err))
	require.Equal(t, models.OutcomeFailed, report.Outcome)

	// no provisioning was attempted
	require.False(t, h.runner.Called(isVenv))
	require.False(t, h.runner.Called(isPip))
	require.False(t, report.Ran(models.StageProvisionDeps))

	require.True(t, report.Ran(models.StageCleanup))
	require.False(t, h.fs.Exists(stagingDir))

	log := h.logContent(t, report)
	require.Contains(t, log, "entry file not found: "+filepath.Join(stagingDir, "main_app", "gui_mainwindow.py"))
}

func TestRun_ToolFailureLeavesDistUntouched(t *testing.T) {
	pb := project.NewProjectBuilder(root).
		AddFile("dist/VoltageCalculator/VoltageCalculator.exe", "MZ old").
		AddFile("build/VoltageCalculator/warn.txt", "old warnings")
	h := newHarness(t, pb)
	h.runner.On(process.HasArgs("PyInstaller", "--noconfirm"), func(cmd process.Command) (int, error) {
		h.fs.AddFile(filepath.Join(cmd.Dir, "build", "VoltageCalculator", "partial.toc"), []byte("partial"))
		_, _ = cmd.Stderr.Write([]byte("ModuleNotFoundError: No module named 'PyQt5.sip'\n"))
		return 1, nil
	})

	distBefore := h.fs.Paths(filepath.Join(root, "dist"))
	buildBefore := h.fs.Paths(filepath.Join(root, "build"))

	report, err := h.run(t, Options{LocalizedName: "Rechner"})
	require.Error(t, err)
	require.Equal(t, models.ExitFailure, models.ExitCode(err))

	var buildErr *models.BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, models.StageInvoke, buildErr.Stage)
	require.Equal(t, 1, buildErr.ToolExitCode)

	require.Equal(t, distBefore, h.fs.Paths(filepath.Join(root, "dist")))
	require.Equal(t, buildBefore, h.fs.Paths(filepath.Join(root, "build")))
	data, err := h.fs.ReadFile(filepath.Join(root, "dist", "VoltageCalculator", "VoltageCalculator.exe"))
	require.NoError(t, err)
	require.Equal(t, "MZ old", string(data))

	require.False(t, report.Ran(models.StageMaterialize))
	require.False(t, h.fs.Exists(stagingDir))

	log := h.logContent(t, report)
	require.Contains(t, log, "PyInstaller failed with exit code 1")
	require.Contains(t, log, "No module named 'PyQt5.sip'")
}

func TestRun_RenameNeverOverwrites(t *testing.T) {
	pb := project.NewProjectBuilder(root).
		AddFile("dist/Rechner/VoltageCalculator.exe", "MZ from an earlier release")
	h := newHarness(t, pb)

	report, err := h.run(t, Options{LocalizedName: "Rechner"})
	require.Error(t, err)
	require.ErrorIs(t, err, materialize.ErrLocalizedExists)
	require.Equal(t, models.ExitFailure, models.ExitCode(err))
	require.Contains(t, err.Error(), "freeze clean")

	var buildErr *models.BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, models.StageMaterialize, buildErr.Stage)
	require.False(t, report.Renamed)

	data, err := h.fs.ReadFile(filepath.Join(root, "dist", "Rechner", "VoltageCalculator.exe"))
	require.NoError(t, err)
	require.Equal(t, "MZ from an earlier release", string(data))
	require.Equal(t, []string{"Rechner", "Rechner/VoltageCalculator.exe"}, h.fs.Paths(filepath.Join(root, "dist")))
	require.False(t, h.fs.Exists(filepath.Join(root, "build")))
	require.False(t, h.fs.Exists(stagingDir))
}

func TestRun_RepeatedLocalizedRunsKeepOneBundle(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))

	report, err := h.run(t, Options{LocalizedName: "Rechner"})
	require.NoError(t, err)
	require.True(t, report.Renamed)
	first := h.fs.Paths(filepath.Join(root, "dist"))

	_, err = h.run(t, Options{LocalizedName: "Rechner"})
	require.ErrorIs(t, err, materialize.ErrLocalizedExists)

	require.Equal(t, first, h.fs.Paths(filepath.Join(root, "dist")))
	require.False(t, h.fs.Exists(filepath.Join(root, "dist", "VoltageCalculator")))
}

func TestRun_RuntimeMissing(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.runner = process.NewMockRunner()
	h.orch = New(h.fs, h.runner).WithFreeSpace(nil)

	report, err := h.run(t, Options{})
	require.Error(t, err)
	require.Equal(t, models.ExitFailure, models.ExitCode(err))

	var buildErr *models.BuildError
	require.ErrorAs(t, err, &buildErr)
	require.Equal(t, models.StageCheckRuntime, buildErr.Stage)

	require.Empty(t, h.runner.Calls())
	require.False(t, report.Ran(models.StageCreate))
	require.False(t, report.Ran(models.StageCleanup))
	require.False(t, h.fs.Exists(stagingDir))
	require.Contains(t, h.logContent(t, report), "python runtime not found")
}

func TestRun_StagingCreationFailure(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.fs.MkdirAllErrors[stagingDir] = errors.New("access is denied")

	report, err := h.run(t, Options{})
	require.Error(t, err)
	require.Equal(t, models.ExitStagingFailure, models.ExitCode(err))
	require.Equal(t, models.StageCreate, report.Stages[len(report.Stages)-2].Stage)
	require.True(t, report.Ran(models.StageCleanup))
	require.False(t, h.fs.Exists(stagingDir))
	require.False(t, h.runner.Called(isVenv))
}

func TestRun_DependencyPolicy(t *testing.T) {
	failOpenpyxl := func(h *harness) {
		h.runner.On(process.HasArgs("pip", "openpyxl"), func(cmd process.Command) (int, error) {
			_, _ = cmd.Stdout.Write([]byte("ERROR: Could not find a version that satisfies the requirement openpyxl\n"))
			return 1, nil
		})
	}

	t.Run("fail-fast aborts before invoking PyInstaller", func(t *testing.T) {
		h := newHarness(t, project.NewProjectBuilder(root))
		failOpenpyxl(h)

		cfg := config.Default()
		cfg.DependencyPolicy = models.PolicyFailFast

		report, err := h.run(t, Options{Config: cfg})
		require.Error(t, err)

		var buildErr *models.BuildError
		require.ErrorAs(t, err, &buildErr)
		require.Equal(t, models.StageProvisionDeps, buildErr.Stage)
		require.False(t, h.runner.Called(isFreeze))
		require.False(t, h.runner.Called(process.HasArgs("pip", "Pillow")), "installation stops at the first failure")
		require.False(t, h.fs.Exists(stagingDir))
		require.Contains(t, h.logContent(t, report), "failed to install openpyxl")
	})

	t.Run("best-effort is the default and continues with a warning", func(t *testing.T) {
		h := newHarness(t, project.NewProjectBuilder(root))
		failOpenpyxl(h)

		report, err := h.run(t, Options{})
		require.NoError(t, err)
		require.True(t, h.runner.Called(isFreeze))
		require.True(t, h.runner.Called(process.HasArgs("pip", "Pillow")))

		found := false
		for _, w := range report.Warnings {
			if w == "failed to install openpyxl, continuing (best-effort): pip install [openpyxl] exited with code 1" {
				found = true
			}
		}
		require.True(t, found, "warnings: %v", report.Warnings)
	})
}

func TestRun_VenvFailureIsFatal(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.runner.On(isVenv, process.Exit(1))

	report, err := h.run(t, Options{})
	require.Error(t, err)
	require.Equal(t, models.StageProvisionDeps, report.Stages[len(report.Stages)-2].Stage)
	require.False(t, h.runner.Called(isPip))
	require.False(t, h.fs.Exists(stagingDir))
}

func TestRun_CancelledDuringInvokeStillCleansUp(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.runner.On(process.HasArgs("PyInstaller", "--noconfirm"), func(cmd process.Command) (int, error) {
		h.fs.AddFile(filepath.Join(cmd.Dir, "build", "VoltageCalculator", "partial.toc"), []byte("partial"))
		cancel()
		return -1, errors.New("PyInstaller interrupted: context canceled")
	})

	report, err := h.orch.Run(ctx, Options{Root: root, Config: config.Default(), Console: h.console})
	require.Error(t, err)
	require.Equal(t, models.ExitFailure, models.ExitCode(err))
	require.True(t, report.Ran(models.StageCleanup))
	require.False(t, h.fs.Exists(stagingDir))
	require.False(t, h.fs.Exists(filepath.Join(root, "dist")))
}

func TestRun_MissingArtifactIsAFailure(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.runner.On(process.HasArgs("PyInstaller", "--noconfirm"), process.Exit(0))

	report, err := h.run(t, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "was not produced")
	require.False(t, report.Ran(models.StageMaterialize))
	require.False(t, h.fs.Exists(stagingDir))
}

func TestRun_LowDiskSpaceWarns(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.orch.WithFreeSpace(func(string) (uint64, error) { return 200 * 1000 * 1000, nil })

	report, err := h.run(t, Options{})
	require.NoError(t, err)
	require.Contains(t, report.Warnings[0], "only 200 MB free")
}

func TestRun_NonASCIIStagingPathWarns(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.fs.SetTempDir("/Users/张伟/AppData/Local/Temp")

	report, err := h.run(t, Options{})
	require.NoError(t, err)
	require.Contains(t, report.Warnings[0], "not an ASCII path")
	require.Contains(t, report.Warnings[0], "staging_parent")

	cfg := config.Default()
	cfg.StagingParent = "/buildcache"

	report, err = h.run(t, Options{Config: cfg})
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/buildcache", "freeze_VoltageCalculator_build"), report.StagingDir)
	for _, w := range report.Warnings {
		require.NotContains(t, w, "ASCII")
	}
	require.False(t, h.fs.Exists(report.StagingDir))
}

func TestRun_RepeatedRunsReuseStagingPath(t *testing.T) {
	h := newHarness(t, project.NewProjectBuilder(root))
	h.fs.AddFile(filepath.Join(stagingDir, "left-over-from-crash.txt"), []byte("x"))

	_, err := h.run(t, Options{})
	require.NoError(t, err)
	require.NotContains(t, h.staged, "left-over-from-crash.txt")

	_, err = h.run(t, Options{})
	require.NoError(t, err)
	require.False(t, h.fs.Exists(stagingDir))
	require.True(t, h.fs.IsDir(filepath.Join(root, "dist", "VoltageCalculator")))
}
