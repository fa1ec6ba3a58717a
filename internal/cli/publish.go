package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/github"
	"github.com/jakoblorz/go-freeze/internal/publish"
	"github.com/jakoblorz/go-freeze/internal/tui"
	"github.com/spf13/cobra"
)

// PublishCommand handles the publish command
type PublishCommand struct {
	fs       filesystem.FileSystem
	ghClient github.GitHubClient
}

// NewPublishCommand creates a new publish command
func NewPublishCommand(fs filesystem.FileSystem, ghClient github.GitHubClient) *cobra.Command {
	cmd := &PublishCommand{
		fs:       fs,
		ghClient: ghClient,
	}

	cobraCmd := &cobra.Command{
		Use:   "publish",
		Short: "Zip the bundle and attach it to a GitHub release",
		Long: `Zips the bundle the latest build left in dist/ to
dist/<name>-<tag>.zip and uploads it to the GitHub release <tag>, creating
the release when it does not exist. An asset with the same name is replaced.

Needs GH_TOKEN or GITHUB_TOKEN.`,
		Example: `  freeze publish --owner acme --repo calculator --tag v1.2.0`,
		RunE:    cmd.Run,
	}

	cobraCmd.Flags().StringP("owner", "o", "", "GitHub repository owner (required)")
	cobraCmd.Flags().StringP("repo", "r", "", "GitHub repository name (required)")
	cobraCmd.Flags().StringP("tag", "t", "", "Release tag (required)")
	cobraCmd.Flags().Bool("draft", false, "Create the release as a draft")
	cobraCmd.Flags().String("profile", "", "Profile the bundle was built with")
	cobraCmd.Flags().String("lang", "", "Language of the bundle folder name (default: system language)")

	return cobraCmd
}

// Run executes the publish command
func (c *PublishCommand) Run(cmd *cobra.Command, args []string) error {
	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	tag, _ := cmd.Flags().GetString("tag")
	draft, _ := cmd.Flags().GetBool("draft")
	profileName, _ := cmd.Flags().GetString("profile")
	out := cmd.OutOrStdout()

	if c.ghClient == nil {
		return fmt.Errorf("authenticated GitHub client required to publish: %w", github.ErrGitHubTokenNotFound)
	}
	if owner == "" {
		return fmt.Errorf("--owner flag required")
	}
	if repo == "" {
		return fmt.Errorf("--repo flag required")
	}
	if tag == "" {
		return fmt.Errorf("--tag flag required")
	}

	resolved, err := resolveProject(c.fs, cmd, profileName)
	if err != nil {
		return err
	}

	tr, err := newTranslator(cmd, resolved.Config)
	if err != nil {
		return err
	}

	result, err := publish.New(c.fs, c.ghClient).Publish(cmd.Context(), publish.Options{
		Root:      resolved.Project.RootPath,
		Name:      resolved.Config.Name,
		Localized: localizedName(resolved.Config, tr),
		Owner:     owner,
		Repo:      repo,
		Tag:       tag,
		Draft:     draft,
	})
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}

	fmt.Fprintf(out, "📦 Zipped %d files from %s\n", result.Files, result.BundleDir)
	if result.Created {
		fmt.Fprintf(out, "Created release %s\n", tag)
	}
	if result.Replaced {
		fmt.Fprintf(out, "Replaced existing asset %s\n", result.Asset.Name)
	}
	fmt.Fprintln(out, tui.SuccessStyle.Render(fmt.Sprintf("✅ Uploaded %s (%s)", result.Asset.Name, humanize.Bytes(uint64(result.Asset.Size)))))
	if result.Release.HTMLURL != "" {
		fmt.Fprintf(out, "🔗 %s\n", result.Release.HTMLURL)
	}

	return nil
}
