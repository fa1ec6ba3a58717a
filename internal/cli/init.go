package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/jakoblorz/go-freeze/internal/tui/initform"
	"github.com/spf13/cobra"
)

// InitCommand handles the init command
type InitCommand struct {
	fs filesystem.FileSystem
}

// NewInitCommand creates a new init command
func NewInitCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &InitCommand{
		fs: fs,
	}

	cobraCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a freeze.yaml for the current project",
		Long: `Asks for the output name, entry point, localized folder name and
dependency policy and writes them with the remaining defaults to
freeze.yaml in the project root. An existing freeze.yaml is kept unless
--force is given.`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().BoolP("yes", "y", false, "Write the defaults without asking")
	cobraCmd.Flags().Bool("force", false, "Overwrite an existing freeze.yaml")

	return cobraCmd
}

// Run executes the init command
func (c *InitCommand) Run(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	force, _ := cmd.Flags().GetBool("force")
	rootFlag, _ := cmd.Flags().GetString("root")
	out := cmd.OutOrStdout()

	root := rootFlag
	if root == "" {
		cwd, err := c.fs.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		root = cwd
	}

	path := filepath.Join(root, config.FileName)
	if c.fs.Exists(path) && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	if !yes {
		result, err := initform.NewFlow(cfg, cmd.InOrStdin(), out).Run()
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
		cfg = result.Apply(cfg)
	}

	written, err := config.Save(c.fs, root, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("✅ Wrote %s", written)))
	return nil
}
