package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-freeze/internal/buildlog"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/spf13/cobra"
)

// CleanCommand handles the clean command
type CleanCommand struct {
	fs filesystem.FileSystem
}

// NewCleanCommand creates a new clean command
func NewCleanCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &CleanCommand{
		fs: fs,
	}

	cobraCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove build outputs and a leftover staging directory",
		Long: `Removes build/ and dist/ from the project root and the staging directory
of an interrupted build. Log files in build_logs/ are kept unless --logs
is given.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	cobraCmd.Flags().Bool("logs", false, "Remove build_logs/ as well")

	return cobraCmd
}

// Run executes the clean command
func (c *CleanCommand) Run(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	logs, _ := cmd.Flags().GetBool("logs")
	out := cmd.OutOrStdout()

	resolved, err := resolveProject(c.fs, cmd, "")
	if err != nil {
		return err
	}

	root := resolved.Project.RootPath
	candidates := []string{
		filepath.Join(root, freeze.BuildDir),
		filepath.Join(root, freeze.DistDir),
		resolved.Config.StagingDir(c.fs.TempDir()),
	}
	if logs {
		candidates = append(candidates, filepath.Join(root, buildlog.DirName))
	}

	var targets []string
	for _, p := range candidates {
		if c.fs.Exists(p) {
			targets = append(targets, p)
		}
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
		return nil
	}

	if !yes {
		confirmed, err := tui.Confirm(cmd.InOrStdin(), out, "Remove build outputs?", strings.Join(targets, "\n"))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	for _, p := range targets {
		if err := c.fs.RemoveAll(p); err != nil {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
		fmt.Fprintf(out, "🗑  %s\n", p)
	}

	return nil
}
