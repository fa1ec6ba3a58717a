package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/inspect"
	"github.com/spf13/cobra"
)

// InspectCommand handles the inspect command
type InspectCommand struct {
	fs filesystem.FileSystem
}

// NewInspectCommand creates a new inspect command
func NewInspectCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &InspectCommand{
		fs: fs,
	}

	cobraCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a directory tree and search it for build related files",
		Long: `Prints a recursive listing of a directory, a listing of each immediate
subdirectory, the files matching each extension and the files whose name
contains each keyword. Nothing is written to disk.`,
		Example: `  # Inspect the parent of the working directory
  freeze inspect

  # Inspect a project and look for other files
  freeze inspect --dir ./app --ext .ui --ext .qrc --keyword window

  # Output JSON for scripting
  freeze inspect --format json > layout.json`,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("dir", "", "Directory to inspect (default: parent of the working directory)")
	cobraCmd.Flags().StringSlice("ext", nil, "Extension to search for, repeatable (default .py, .spec, .bat)")
	cobraCmd.Flags().StringSlice("keyword", nil, "Filename keyword to search for, repeatable (default main, gui, path_manager, requirements, setup)")
	cobraCmd.Flags().String("format", "text", "Output format: text or json")

	return cobraCmd
}

// Run executes the inspect command
func (c *InspectCommand) Run(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	exts, _ := cmd.Flags().GetStringSlice("ext")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	format, _ := cmd.Flags().GetString("format")

	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	if dir == "" {
		cwd, err := c.fs.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = filepath.Dir(cwd)
	}

	report, err := inspect.New(c.fs).Inspect(dir, inspect.Options{
		Extensions: exts,
		Keywords:   keywords,
	})
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	}

	if format == "json" {
		return inspect.RenderJSON(cmd.OutOrStdout(), report)
	}
	inspect.RenderText(cmd.OutOrStdout(), report)
	return nil
}
