package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/jakoblorz/go-freeze/internal/buildlog"
	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/diskspace"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
	"github.com/jakoblorz/go-freeze/internal/materialize"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/process"
	"github.com/jakoblorz/go-freeze/internal/python"
	"github.com/jakoblorz/go-freeze/internal/runid"
	"github.com/jakoblorz/go-freeze/internal/staging"
)

// Options configures one build.
type Options struct {
	Root   string
	Config *config.Config

	// Profile is the applied profile, if any; only its description is used.
	Profile *config.Profile

	// LocalizedName is the folder the bundle is renamed to; empty keeps
	// the tool name.
	LocalizedName string

	// Python overrides the interpreter search.
	Python string

	// Verbose echoes child process output to the console.
	Verbose bool

	Console io.Writer
	Now     time.Time
}

// Orchestrator runs the isolated build pipeline.
type Orchestrator struct {
	fs        filesystem.FileSystem
	runner    process.Runner
	freeSpace diskspace.FreeFunc
	newRunID  func() (string, error)
}

// New creates an Orchestrator
func New(fs filesystem.FileSystem, runner process.Runner) *Orchestrator {
	return &Orchestrator{
		fs:        fs,
		runner:    runner,
		freeSpace: diskspace.Free,
		newRunID:  runid.New,
	}
}

// WithFreeSpace replaces the disk space probe; nil disables it.
func (o *Orchestrator) WithFreeSpace(f diskspace.FreeFunc) *Orchestrator {
	o.freeSpace = f
	return o
}

// Run executes Init → CheckRuntime → Stage → Mirror → VerifyEntry →
// ProvisionDeps → Invoke → Materialize → Cleanup. Once the staging
// directory is being created, every exit path goes through Cleanup. The
// returned error is a *models.BuildError whose Code is the process exit
// status. The report is returned even on failure, once the log is open.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*models.BuildReport, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	id, err := o.newRunID()
	if err != nil {
		return nil, models.NewBuildError(models.StageInit, err)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	log, err := buildlog.New(o.fs, buildlog.Options{
		Root:         opts.Root,
		NameTemplate: cfg.LogNameTemplate,
		Now:          now,
		RunID:        id,
		Console:      opts.Console,
	})
	if err != nil {
		return nil, models.NewBuildError(models.StageInit, err)
	}
	defer log.Close()

	r := &run{
		o:    o,
		opts: opts,
		cfg:  cfg,
		log:  log,
		report: &models.BuildReport{
			RunID:      id,
			LogPath:    log.Path(),
			StagingDir: cfg.StagingDir(o.fs.TempDir()),
		},
	}

	err = r.execute(ctx)
	if err != nil {
		r.report.Outcome = models.OutcomeFailed
		log.SetStage(models.StageDone)
		log.Error("build failed at %s, see %s", r.report.LastStage(), log.Path())
		return r.report, err
	}

	r.report.Outcome = models.OutcomeSucceeded
	log.SetStage(models.StageDone)
	log.Success("build complete: %s", r.report.BundleDir)
	return r.report, nil
}

type run struct {
	o      *Orchestrator
	opts   Options
	cfg    *config.Config
	log    *buildlog.Logger
	report *models.BuildReport

	stager *staging.Stager
	rt     *python.Runtime
	env    *python.Env
}

func (r *run) stage(stage models.Stage, fn func() error) error {
	r.log.SetStage(stage)
	start := time.Now()

	err := fn()

	result := models.StageResult{Stage: stage, Duration: time.Since(start)}
	if err != nil {
		result.Err = err.Error()
	}
	r.report.Stages = append(r.report.Stages, result)
	return err
}

func (r *run) warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.log.Warn("%s", msg)
	r.report.Warnings = append(r.report.Warnings, msg)
}

func (r *run) execute(ctx context.Context) error {
	r.log.Step("building %s from %s (run %s)", r.cfg.Name, r.opts.Root, r.report.RunID)
	if r.opts.Profile != nil {
		r.log.Info("profile %s: %s", r.opts.Profile.Name, r.opts.Profile.Description)
	}

	if err := r.stage(models.StageCheckRuntime, func() error { return r.checkRuntime(ctx) }); err != nil {
		// nothing was staged yet, so there is nothing to clean up
		return err
	}

	r.stager = staging.NewStager(r.o.fs, r.report.StagingDir)

	err := r.pipeline(ctx)
	if cleanupErr := r.stage(models.StageCleanup, r.cleanup); cleanupErr != nil {
		if err == nil {
			return models.NewBuildError(models.StageCleanup, cleanupErr)
		}
		r.log.Error("%v", cleanupErr)
	}
	return err
}

func (r *run) pipeline(ctx context.Context) error {
	steps := []struct {
		stage models.Stage
		fn    func(context.Context) error
	}{
		{models.StageCreate, r.create},
		{models.StageMirror, r.mirror},
		{models.StageVerifyEntry, r.verifyEntry},
		{models.StageProvisionDeps, r.provision},
		{models.StageInvoke, r.invoke},
		{models.StageMaterialize, r.materialize},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			r.log.Error("interrupted before %s", step.stage)
			return models.NewBuildError(step.stage, err)
		}

		err := r.stage(step.stage, func() error { return step.fn(ctx) })
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) checkRuntime(ctx context.Context) error {
	preferred := r.opts.Python
	if preferred == "" {
		preferred = r.cfg.Python
	}

	rt, err := python.NewLocator(r.o.runner).Find(ctx, preferred, r.cfg.MinPython)
	if err != nil {
		r.log.Error("Python %s or newer not found on PATH: %v", r.cfg.MinPython, err)
		return models.NewBuildError(models.StageCheckRuntime, err)
	}

	r.rt = rt
	r.log.Success("found Python %s at %s", rt.Version, rt.Path)
	return nil
}

func (r *run) create(ctx context.Context) error {
	want, _ := r.cfg.MinFreeBytes()
	shortage, err := diskspace.Check(r.o.freeSpace, r.stager.Dir(), want)
	if err != nil {
		r.log.Info("skipping disk space check: %v", err)
	} else if shortage != nil {
		r.warn("%s", shortage)
	}

	if !staging.IsASCII(r.stager.Dir()) {
		r.warn("staging directory %s is not an ASCII path, set staging_parent in %s to avoid encoding problems", r.stager.Dir(), config.FileName)
	}

	r.log.Step("creating staging directory %s", r.stager.Dir())
	if err := r.stager.Create(); err != nil {
		r.log.Error("%v", err)
		return &models.BuildError{Stage: models.StageCreate, Code: models.ExitStagingFailure, Err: err}
	}
	return nil
}

func (r *run) mirror(ctx context.Context) error {
	r.log.Step("mirroring %s", r.opts.Root)

	stats, err := r.stager.Mirror(r.opts.Root, staging.NewExcluder(r.opts.Root, r.cfg.Exclude))
	if err != nil {
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageMirror, err)
	}

	for _, rel := range stats.Excluded {
		r.log.Info("excluded %s", rel)
	}
	r.log.Success("copied %d files in %d directories", stats.Files, stats.Dirs)
	return nil
}

func (r *run) verifyEntry(ctx context.Context) error {
	path, err := r.stager.VerifyEntry(r.cfg.Entry)
	if err != nil {
		r.log.Error("entry file not found: %s", r.stager.Path(r.cfg.Entry))
		return models.NewBuildError(models.StageVerifyEntry, err)
	}

	r.log.Success("entry point %s", path)
	return nil
}

func (r *run) provision(ctx context.Context) error {
	r.log.Step("creating virtual environment")

	env, err := python.CreateVenv(ctx, r.o.runner, r.rt, python.EnvOptions{
		WorkDir: r.stager.Dir(),
		Extra:   r.cfg.EnvList(),
		Output:  r.log.Output(r.opts.Verbose),
	})
	if err != nil {
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageProvisionDeps, err)
	}
	r.env = env

	installs := []installStep{
		{"pip", []string{"--upgrade", "pip"}},
		{"pyinstaller", []string{"pyinstaller"}},
	}
	for _, dep := range r.cfg.Dependencies {
		installs = append(installs, installStep{dep, []string{dep}})
	}

	for _, install := range installs {
		r.log.Step("installing %s", install.label)
		if err := env.Install(ctx, install.args...); err != nil {
			if ctx.Err() != nil || !isInstallFailure(err) || r.cfg.DependencyPolicy != models.PolicyBestEffort {
				r.log.Error("failed to install %s: %v", install.label, err)
				return models.NewBuildError(models.StageProvisionDeps, err)
			}
			r.warn("failed to install %s, continuing (%s): %v", install.label, r.cfg.DependencyPolicy, err)
		}
	}

	version, err := env.PyInstallerVersion(ctx)
	switch {
	case err != nil:
		r.warn("could not determine PyInstaller version: %v", err)
	case !python.AtLeast(version, python.MinPyInstaller):
		r.warn("PyInstaller %s is older than %s, the build may fail", version, python.MinPyInstaller)
	default:
		r.log.Success("PyInstaller %s ready", version)
	}

	return nil
}

type installStep struct {
	label string
	args  []string
}

func isInstallFailure(err error) bool {
	var installErr *python.InstallError
	return errors.As(err, &installErr)
}

func (r *run) invoke(ctx context.Context) error {
	dir := r.stager.Dir()

	if err := freeze.CleanOutputs(r.o.fs, dir); err != nil {
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageInvoke, err)
	}

	opts, skipped := freeze.FromConfig(r.cfg, func(src string) bool {
		return r.o.fs.IsDir(r.stager.Path(src))
	})
	for _, src := range skipped {
		r.warn("data directory %s not found, skipping", src)
	}

	f := freeze.NewModuleFreezer(r.o.runner, r.env.Python(), dir, r.env.Environ(), r.log.Output(r.opts.Verbose))
	r.log.Step("running %s", f.Command(opts))

	if err := f.Run(ctx, opts); err != nil {
		var toolErr *freeze.ToolError
		if errors.As(err, &toolErr) {
			r.log.Error("PyInstaller failed with exit code %d", toolErr.ExitCode)
			return &models.BuildError{
				Stage:        models.StageInvoke,
				Code:         models.ExitFailure,
				ToolExitCode: toolErr.ExitCode,
				Err:          err,
			}
		}
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageInvoke, err)
	}

	artifact := freeze.ArtifactPath(dir, r.cfg.Name, runtime.GOOS)
	if !r.o.fs.Exists(artifact) {
		err := fmt.Errorf("expected artifact %s was not produced", artifact)
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageInvoke, err)
	}

	r.log.Success("PyInstaller produced %s", artifact)
	return nil
}

func (r *run) materialize(ctx context.Context) error {
	r.log.Step("copying build and dist into %s", r.opts.Root)

	result, err := materialize.New(r.o.fs).Materialize(r.stager.Dir(), r.opts.Root, r.cfg.Name, r.opts.LocalizedName)
	if err != nil {
		r.log.Error("%v", err)
		return models.NewBuildError(models.StageMaterialize, err)
	}

	if result.Renamed {
		r.log.Info("renamed bundle to %s", r.opts.LocalizedName)
	}

	r.report.BundleDir = result.BundleDir
	r.report.Renamed = result.Renamed
	r.log.Success("copied %d files", result.Files)
	return nil
}

func (r *run) cleanup() error {
	r.log.Step("removing staging directory %s", r.stager.Dir())
	if err := r.stager.Cleanup(); err != nil {
		return err
	}
	r.log.Success("staging directory removed")
	return nil
}
