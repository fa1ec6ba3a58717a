package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jakoblorz/go-freeze/internal/filesystem"
	"github.com/jakoblorz/go-freeze/internal/freeze"
	"github.com/jakoblorz/go-freeze/internal/github"
	"github.com/jakoblorz/go-freeze/internal/materialize"
)

// Options selects what is published where.
type Options struct {
	Root string

	// Name is the tool name of the bundle; Localized is the folder it may
	// have been renamed to.
	Name      string
	Localized string

	Owner string
	Repo  string
	Tag   string
	Draft bool
}

// Result describes a finished publish.
type Result struct {
	Repository *github.Repository
	BundleDir  string
	Archive    string
	Files      int
	Release    *github.Release
	Created    bool
	Replaced   bool
	Asset      *github.Asset
}

// Publisher uploads materialized bundles to GitHub releases.
type Publisher struct {
	fs filesystem.FileSystem
	gh github.GitHubClient
}

// New creates a Publisher
func New(fs filesystem.FileSystem, gh github.GitHubClient) *Publisher {
	return &Publisher{fs: fs, gh: gh}
}

// FindBundle returns the bundle the latest build recorded under
// <root>/dist. Without a record it falls back to whichever of the localized
// and tool-name folders exists, and refuses to guess when both do.
func (p *Publisher) FindBundle(root, name, localized string) (string, error) {
	if dir, ok := materialize.LastBundle(p.fs, root); ok {
		return dir, nil
	}

	var found []string
	for _, n := range []string{localized, name} {
		if n == "" {
			continue
		}
		if dir := freeze.BundleDir(root, n); p.fs.IsDir(dir) && !contains(found, dir) {
			found = append(found, dir)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("no bundle found in %s, run freeze build first", filepath.Join(root, freeze.DistDir))
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("both %s and %s exist, run freeze clean and build again", found[0], found[1])
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Publish zips the bundle to <root>/dist/<name>-<tag>.zip and attaches it
// to the release tag, creating the release when needed. An asset of the
// same name is replaced.
func (p *Publisher) Publish(ctx context.Context, opts Options) (*Result, error) {
	if opts.Owner == "" || opts.Repo == "" || opts.Tag == "" {
		return nil, errors.New("owner, repo and tag are required")
	}

	repository, err := p.gh.GetRepository(ctx, opts.Owner, opts.Repo)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s/%s: %w", opts.Owner, opts.Repo, err)
	}

	bundle, err := p.FindBundle(opts.Root, opts.Name, opts.Localized)
	if err != nil {
		return nil, err
	}

	assetName := fmt.Sprintf("%s-%s.zip", opts.Name, opts.Tag)
	archive := filepath.Join(opts.Root, freeze.DistDir, assetName)

	files, err := Archive(p.fs, bundle, archive)
	if err != nil {
		return nil, err
	}

	result := &Result{Repository: repository, BundleDir: bundle, Archive: archive, Files: files}

	release, err := p.gh.GetReleaseByTag(ctx, opts.Owner, opts.Repo, opts.Tag)
	switch {
	case errors.Is(err, github.ErrReleaseNotFound):
		release, err = p.gh.CreateRelease(ctx, opts.Owner, opts.Repo, &github.CreateReleaseRequest{
			TagName: opts.Tag,
			Name:    fmt.Sprintf("%s %s", opts.Name, opts.Tag),
			Draft:   opts.Draft,
		})
		if err != nil {
			return nil, err
		}
		result.Created = true
	case err != nil:
		return nil, err
	}
	result.Release = release

	assets, err := p.gh.ListReleaseAssets(ctx, opts.Owner, opts.Repo, release.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range assets {
		if a.Name != assetName {
			continue
		}
		if err := p.gh.DeleteReleaseAsset(ctx, opts.Owner, opts.Repo, a.ID); err != nil {
			return nil, err
		}
		result.Replaced = true
	}

	asset, err := p.gh.UploadReleaseAsset(ctx, opts.Owner, opts.Repo, release.ID, assetName, archive)
	if err != nil {
		return nil, err
	}
	result.Asset = asset

	return result, nil
}
