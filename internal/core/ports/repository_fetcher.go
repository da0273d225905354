package ports

import (
	"context"

	"go.rv.dev/rv/internal/core/domain"
)

// RepositoryFetcher fetches and caches a repository's package index.
//
//go:generate mockgen -source=repository_fetcher.go -destination=mocks/mock_repository_fetcher.go -package=mocks
type RepositoryFetcher interface {
	// FetchIndex returns the cached index for repo if it is fresh, or
	// downloads and parses a new one otherwise. A corrupt cached entry
	// triggers exactly one re-download before domain.ErrRepositoryFetchFailed
	// is returned.
	FetchIndex(ctx context.Context, repo domain.Repository, engineVersion, arch string) (*domain.RepositoryIndex, error)
}
