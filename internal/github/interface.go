package github

import (
	"context"
	"errors"
	"time"
)

// ErrReleaseNotFound is returned by GetReleaseByTag for unknown tags.
var ErrReleaseNotFound = errors.New("release not found")

// GitHubClient provides an abstraction over the GitHub release API
type GitHubClient interface {
	// Repository operations
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)

	// Release operations
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error)
	CreateRelease(ctx context.Context, owner, repo string, release *CreateReleaseRequest) (*Release, error)

	// Asset operations
	ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]*Asset, error)
	DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, name, path string) (*Asset, error)
}

// Release represents a GitHub release
type Release struct {
	ID          int64
	TagName     string
	Name        string
	Body        string
	HTMLURL     string
	Draft       bool
	Prerelease  bool
	CreatedAt   time.Time
	PublishedAt time.Time
}

// CreateReleaseRequest represents a request to create a release
type CreateReleaseRequest struct {
	TagName         string
	Name            string
	Body            string
	Draft           bool
	Prerelease      bool
	TargetCommitish string
}

// Asset is a file attached to a release
type Asset struct {
	ID          int64
	Name        string
	Size        int
	DownloadURL string
}

// Repository represents a GitHub repository
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	URL           string
	DefaultBranch string
}
