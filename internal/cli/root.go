package cli

import (
	"context"
	"fmt"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/github"
	"github.com/jakoblorz/go-freeze/internal/process"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command
func NewRootCommand(fs filesystem.FileSystem, runner process.Runner, ghClient github.GitHubClient) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "freeze",
		Short: "Package Python desktop applications with PyInstaller",
		Long: `A CLI tool for freezing Python GUI applications with PyInstaller.

Builds run in a throwaway staging directory with their own virtual
environment, so the project tree and the system Python stay untouched.
The results are copied back into build/ and dist/ of the project.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to `freeze build` when no subcommand is provided.
			return (&BuildCommand{fs: fs, runner: runner}).Run(cmd, args)
		},
	}

	rootCmd.PersistentFlags().String("root", "", "Project root (detected from the working directory when empty)")
	addBuildFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(NewBuildCommand(fs, runner))
	rootCmd.AddCommand(NewQuickCommand(fs, runner))
	rootCmd.AddCommand(NewInspectCommand(fs))
	rootCmd.AddCommand(NewInitCommand(fs))
	rootCmd.AddCommand(NewCleanCommand(fs))
	rootCmd.AddCommand(NewProfilesCommand(fs))
	rootCmd.AddCommand(NewPublishCommand(fs, ghClient))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	fs := filesystem.NewOSFileSystem()
	runner := process.NewOSRunner()

	var ghClient github.GitHubClient
	if client, err := github.NewClientFromEnv(); err == nil {
		ghClient = client
	}

	rootCmd := NewRootCommand(fs, runner, ghClient)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
