package github

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient implements GitHubClient for testing
type MockClient struct {
	mu           sync.RWMutex
	releases     map[string][]*Release // key: "owner/repo"
	repositories map[string]*Repository // key: "owner/repo"
	assets       map[int64][]*Asset     // key: release ID
	uploads      []Upload
	nextID       int64

	// Hooks for testing error scenarios
	GetReleaseByTagError    error
	CreateReleaseError      error
	GetRepositoryError      error
	ListReleaseAssetsError  error
	DeleteReleaseAssetError error
	UploadReleaseAssetError error
}

// Upload records one UploadReleaseAsset call
type Upload struct {
	ReleaseID int64
	Name      string
	Path      string
}

// NewMockClient creates a new MockClient
func NewMockClient() *MockClient {
	return &MockClient{
		releases:     make(map[string][]*Release),
		repositories: make(map[string]*Repository),
		assets:       make(map[int64][]*Asset),
	}
}

// SetupRepository adds a repository to the mock
func (m *MockClient) SetupRepository(owner, repo string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.repositories[key] = &Repository{
		Owner:         owner,
		Name:          repo,
		FullName:      key,
		URL:           fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		DefaultBranch: "main",
	}
}

// AddRelease adds a release to the mock and assigns it an ID
func (m *MockClient) AddRelease(owner, repo string, release *Release) *Release {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	release.ID = m.nextID

	key := fmt.Sprintf("%s/%s", owner, repo)
	m.releases[key] = append(m.releases[key], release)
	return release
}

// AddAsset attaches an asset to a release
func (m *MockClient) AddAsset(releaseID int64, name string) *Asset {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	asset := &Asset{ID: m.nextID, Name: name}
	m.assets[releaseID] = append(m.assets[releaseID], asset)
	return asset
}

func (m *MockClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	if m.GetRepositoryError != nil {
		return nil, m.GetRepositoryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	repository, exists := m.repositories[key]
	if !exists {
		return nil, fmt.Errorf("repository %s not found", key)
	}

	return repository, nil
}

func (m *MockClient) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*Release, error) {
	if m.GetReleaseByTagError != nil {
		return nil, m.GetReleaseByTagError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	for _, r := range m.releases[key] {
		if r.TagName == tag {
			return r, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrReleaseNotFound, tag)
}

func (m *MockClient) CreateRelease(ctx context.Context, owner, repo string, req *CreateReleaseRequest) (*Release, error) {
	if m.CreateReleaseError != nil {
		return nil, m.CreateReleaseError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s", owner, repo)

	// Check if tag already exists
	for _, r := range m.releases[key] {
		if r.TagName == req.TagName {
			return nil, fmt.Errorf("release with tag %s already exists", req.TagName)
		}
	}

	m.nextID++
	release := &Release{
		ID:          m.nextID,
		TagName:     req.TagName,
		Name:        req.Name,
		Body:        req.Body,
		HTMLURL:     fmt.Sprintf("https://github.com/%s/releases/tag/%s", key, req.TagName),
		Draft:       req.Draft,
		Prerelease:  req.Prerelease,
		CreatedAt:   time.Now(),
		PublishedAt: time.Now(),
	}

	m.releases[key] = append(m.releases[key], release)
	return release, nil
}

func (m *MockClient) ListReleaseAssets(ctx context.Context, owner, repo string, releaseID int64) ([]*Asset, error) {
	if m.ListReleaseAssetsError != nil {
		return nil, m.ListReleaseAssetsError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*Asset(nil), m.assets[releaseID]...), nil
}

func (m *MockClient) DeleteReleaseAsset(ctx context.Context, owner, repo string, assetID int64) error {
	if m.DeleteReleaseAssetError != nil {
		return m.DeleteReleaseAssetError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for releaseID, assets := range m.assets {
		for i, a := range assets {
			if a.ID == assetID {
				m.assets[releaseID] = append(assets[:i:i], assets[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("asset %d not found", assetID)
}

func (m *MockClient) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, name, path string) (*Asset, error) {
	if m.UploadReleaseAssetError != nil {
		return nil, m.UploadReleaseAssetError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.assets[releaseID] {
		if a.Name == name {
			return nil, fmt.Errorf("asset %s already exists", name)
		}
	}

	m.nextID++
	asset := &Asset{
		ID:          m.nextID,
		Name:        name,
		DownloadURL: fmt.Sprintf("https://github.com/%s/%s/releases/download/%d/%s", owner, repo, releaseID, name),
	}
	m.assets[releaseID] = append(m.assets[releaseID], asset)
	m.uploads = append(m.uploads, Upload{ReleaseID: releaseID, Name: name, Path: path})
	return asset, nil
}

// Uploads returns every upload so far (helper for testing)
func (m *MockClient) Uploads() []Upload {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Upload(nil), m.uploads...)
}

// GetAllReleases returns all releases for a repository (helper for testing)
func (m *MockClient) GetAllReleases(owner, repo string) []*Release {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := fmt.Sprintf("%s/%s", owner, repo)
	return m.releases[key]
}
