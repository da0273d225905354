package ports

import (
	"context"

	"go.rv.dev/rv/internal/core/domain"
)

// LibraryStore reads and mutates the persisted, installed project library.
//
//go:generate mockgen -source=library_store.go -destination=mocks/mock_library_store.go -package=mocks
type LibraryStore interface {
	// Current returns the currently installed library entries.
	Current(libraryRoot string) (*domain.Library, error)

	// Promote atomically renames the staged directory at stagingPath into
	// its final library location, only after verifying the expected
	// metadata file is present.
	Promote(ctx context.Context, stagingPath, finalPath string) error

	// Remove deletes an installed package's tree.
	Remove(ctx context.Context, finalPath string) error

	// CleanStaging removes a cancelled or failed install's staging
	// directory.
	CleanStaging(stagingPath string) error
}
