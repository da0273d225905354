package ports

import "go.rv.dev/rv/internal/core/domain"

// LockfileStore reads and writes the binary lockfile.
//
//go:generate mockgen -source=lockfile_store.go -destination=mocks/mock_lockfile_store.go -package=mocks
type LockfileStore interface {
	// Load reads the lockfile at path. It returns (nil, nil) if the file
	// does not exist. A format-version mismatch returns
	// domain.ErrLockfileIncompatible.
	Load(path string) (*domain.Lockfile, error)

	// Save writes l to path atomically (write-to-temp then rename).
	Save(path string, l *domain.Lockfile) error
}
