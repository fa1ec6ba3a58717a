package cli

import (
	"fmt"
	"strings"

	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/spf13/cobra"
)

// ProfilesCommand handles the profiles command
type ProfilesCommand struct {
	fs filesystem.FileSystem
}

// NewProfilesCommand creates a new profiles command
func NewProfilesCommand(fs filesystem.FileSystem) *cobra.Command {
	cmd := &ProfilesCommand{
		fs: fs,
	}

	return &cobra.Command{
		Use:   "profiles",
		Short: "List the build profiles of the project",
		Long: `Lists the profiles in .freeze/profiles. A profile is a markdown file whose
frontmatter overrides freeze.yaml; select one with build --profile <name>.`,
		RunE: cmd.Run,
	}
}

// Run executes the profiles command
func (c *ProfilesCommand) Run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	resolved, err := resolveProject(c.fs, cmd, "")
	if err != nil {
		return err
	}

	profiles, err := config.NewProfileManager(c.fs, resolved.Project.RootPath).ReadAll()
	if err != nil {
		return err
	}

	if len(profiles) == 0 {
		fmt.Fprintf(out, "No profiles in %s\n", config.ProfileDir)
		return nil
	}

	for _, p := range profiles {
		fmt.Fprintln(out, tui.SelectedStyle.Render(p.Name))
		if p.Description != "" {
			// only the first line, the rest is for humans reading the file
			desc := p.Description
			if idx := strings.Index(desc, "\n"); idx > 0 {
				desc = desc[:idx]
			}
			fmt.Fprintf(out, "  %s\n", tui.DescStyle.Render(desc))
		}
	}

	return nil
}
