package cli

import (
	"fmt"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/locale"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/orchestrator"
	"github.com/jakoblorz/go-freeze/internal/process"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/spf13/cobra"
)

// BuildCommand handles the build command
type BuildCommand struct {
	fs     filesystem.FileSystem
	runner process.Runner
}

// NewBuildCommand creates a new build command
func NewBuildCommand(fs filesystem.FileSystem, runner process.Runner) *cobra.Command {
	cmd := &BuildCommand{
		fs:     fs,
		runner: runner,
	}

	cobraCmd := &cobra.Command{
		Use:   "build",
		Short: "Freeze the application inside an isolated staging directory",
		Long: `Copies the project into a temporary staging directory, creates a fresh
virtual environment there, installs PyInstaller and the dependencies and
freezes the entry point. build/ and dist/ are copied back into the project
and the bundle is renamed to its localized folder name.

The staging directory is removed on every exit path. Each run appends to a
log file in build_logs/.

Exit codes: 0 on success, 1 on failure or a missing Python runtime,
2 when the staging directory cannot be created.`,
		Example: `  # Build with freeze.yaml
  freeze build

  # Build with a profile from .freeze/profiles/debug.md
  freeze build --profile debug

  # Stop at the first dependency that fails to install
  freeze build --deps-policy fail-fast --verbose`,
		RunE: cmd.Run,
	}

	addBuildFlags(cobraCmd)

	return cobraCmd
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("profile", "", "Profile from .freeze/profiles to apply")
	cmd.Flags().String("python", "", "Python interpreter to use instead of searching PATH")
	cmd.Flags().String("lang", "", "Language of the bundle folder name and messages (default: system language)")
	cmd.Flags().String("deps-policy", "", "Override dependency_policy: fail-fast or best-effort")
	cmd.Flags().BoolP("verbose", "v", false, "Echo pip and PyInstaller output to the console")
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	profileName, _ := cmd.Flags().GetString("profile")
	pythonFlag, _ := cmd.Flags().GetString("python")
	policyFlag, _ := cmd.Flags().GetString("deps-policy")
	verbose, _ := cmd.Flags().GetBool("verbose")

	resolved, err := resolveProject(c.fs, cmd, profileName)
	if err != nil {
		return err
	}

	cfg := resolved.Config
	if policyFlag != "" {
		policy, err := models.ParseDependencyPolicy(policyFlag)
		if err != nil {
			return err
		}
		cfg.DependencyPolicy = policy
	}

	tr, err := newTranslator(cmd, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.TitleStyle.Render(fmt.Sprintf("📦 %s", cfg.Name)))

	report, err := orchestrator.New(c.fs, c.runner).Run(cmd.Context(), orchestrator.Options{
		Root:          resolved.Project.RootPath,
		Config:        cfg,
		Profile:       resolved.Profile,
		LocalizedName: localizedName(cfg, tr),
		Python:        pythonFlag,
		Verbose:       verbose,
		Console:       out,
	})
	if report == nil {
		return err
	}

	fmt.Fprintln(out)
	if err != nil {
		fmt.Fprintln(out, tui.ErrorStyle.Render("❌ "+tr.Loc("build_failed", locale.Strmap{
			"Stage": report.LastStage().String(),
			"Log":   report.LogPath,
		})))
		return err
	}

	for _, w := range report.Warnings {
		fmt.Fprintln(out, tui.WarnStyle.Render("⚠️  "+w))
	}
	fmt.Fprintln(out, tui.SuccessStyle.Render("✅ "+tr.Loc("build_complete", locale.Strmap{"Path": report.BundleDir})))
	fmt.Fprintln(out, tui.SubtleStyle.Render(tr.Loc("staging_hint", nil)))

	return nil
}
