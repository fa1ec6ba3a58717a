package cli

import (
	"fmt"

	"github.com/jakoblorz/go-freeze/internal/config"
	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/locale"
	"github.com/jakoblorz/go-freeze/internal/models"
	"github.com/jakoblorz/go-freeze/internal/project"
	"github.com/spf13/cobra"
)

type resolvedProject struct {
	Project *models.Project
	Config  *config.Config

	// Profile is nil unless --profile selected one.
	Profile *config.Profile
}

// resolveProject detects the project root, loads freeze.yaml and applies
// the named profile.
func resolveProject(fs filesystem.FileSystem, cmd *cobra.Command, profileName string) (*resolvedProject, error) {
	rootFlag, _ := cmd.Flags().GetString("root")

	var (
		proj *models.Project
		err  error
	)
	if rootFlag != "" {
		proj, err = project.DetectFrom(fs, rootFlag)
	} else {
		proj, err = project.Detect(fs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to detect project: %w", err)
	}

	cfg, err := config.Load(fs, proj.RootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	resolved := &resolvedProject{Project: proj, Config: cfg}
	if profileName == "" {
		return resolved, nil
	}

	profile, err := config.NewProfileManager(fs, proj.RootPath).Read(profileName)
	if err != nil {
		return nil, err
	}

	resolved.Config, err = profile.Apply(cfg)
	if err != nil {
		return nil, err
	}
	resolved.Profile = profile

	return resolved, nil
}

// localizedName picks the folder the bundle is renamed to. The catalog
// name only describes the default application, so projects with their own
// name and no localized_name keep the tool name.
func localizedName(cfg *config.Config, tr *locale.Translator) string {
	if cfg.LocalizedName == "" && cfg.Name != config.Default().Name {
		return ""
	}
	return tr.BundleFolderName(cfg.LocalizedName)
}

func newTranslator(cmd *cobra.Command, cfg *config.Config) (*locale.Translator, error) {
	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.Lang
	}
	return locale.New(lang)
}
