package cli

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
	"github.com/jakoblorz/go-freeze/internal/process"
	"github.com/jakoblorz/go-freeze/internal/python"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/spf13/cobra"
)

// QuickCommand handles the quick command
type QuickCommand struct {
	fs     filesystem.FileSystem
	runner process.Runner
}

// NewQuickCommand creates a new quick command
func NewQuickCommand(fs filesystem.FileSystem, runner process.Runner) *cobra.Command {
	cmd := &QuickCommand{
		fs:     fs,
		runner: runner,
	}

	cobraCmd := &cobra.Command{
		Use:   "quick",
		Short: "Run the pyinstaller on PATH directly in the project",
		Long: `Runs the pyinstaller found on PATH once inside the project root, with the
same arguments as build. There is no staging directory, no virtual
environment and no cleanup; build/ and dist/ are written in place.

Succeeds when dist/<name>/<name> (.exe on Windows) exists afterwards.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("profile", "", "Profile from .freeze/profiles to apply")

	return cobraCmd
}

// Run executes the quick command
func (c *QuickCommand) Run(cmd *cobra.Command, args []string) error {
	profileName, _ := cmd.Flags().GetString("profile")
	out := cmd.OutOrStdout()

	resolved, err := resolveProject(c.fs, cmd, profileName)
	if err != nil {
		return err
	}

	root := resolved.Project.RootPath
	cfg := resolved.Config

	path, err := c.runner.LookPath("pyinstaller")
	if err != nil {
		return fmt.Errorf("pyinstaller not found on PATH: %w", err)
	}

	if !c.fs.Exists(filepath.Join(root, filepath.FromSlash(cfg.Entry))) {
		return fmt.Errorf("entry file not found: %s", filepath.Join(root, filepath.FromSlash(cfg.Entry)))
	}

	opts, skipped := freeze.FromConfig(cfg, func(src string) bool {
		return c.fs.IsDir(filepath.Join(root, filepath.FromSlash(src)))
	})
	for _, src := range skipped {
		fmt.Fprintln(out, tui.WarnStyle.Render(fmt.Sprintf("⚠️  data directory %s not found, skipping", src)))
	}

	env := append(append([]string{}, python.BaseEnv...), cfg.EnvList()...)
	f := freeze.NewExecutableFreezer(c.runner, path, root, env, out)
	fmt.Fprintf(out, "🔧 %s\n", f.Command(opts))

	if err := f.Run(cmd.Context(), opts); err != nil {
		return err
	}

	artifact := freeze.ArtifactPath(root, cfg.Name, runtime.GOOS)
	if !c.fs.Exists(artifact) {
		return fmt.Errorf("expected artifact %s was not produced", artifact)
	}

	fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("✅ %s", artifact)))
	return nil
}
