// Package library implements ports.LibraryStore: the installed project
// library as a plain directory of package trees, one subdirectory per
// package, each carrying a DESCRIPTION file and the domain.InstalledMeta
// sidecar written by the sync pool before promotion.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/adapters/descriptor"
	"go.rv.dev/rv/internal/core/domain"
)

// ErrPromotionNotReady is returned when Promote is asked to promote a
// staged directory that is missing its installed-metadata sidecar.
var ErrPromotionNotReady = zerr.New("staged package is missing its installed metadata sidecar")

// Store implements ports.LibraryStore.
type Store struct{}

// New builds a Store.
func New() *Store {
	return &Store{}
}

// Current lists every installed package under libraryRoot — the resolved,
// per-engine-version/architecture (or override) directory whose immediate
// subdirectories are each one installed package's tree — parsing each
// entry's DESCRIPTION for name/version and its sidecar for source and
// fingerprint. A package directory missing DESCRIPTION is skipped rather
// than failing the whole scan: a half-removed or foreign directory
// shouldn't block every other package from being read.
func (s *Store) Current(libraryRoot string) (*domain.Library, error) {
	dirEntries, err := os.ReadDir(libraryRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewLibrary(nil), nil
		}
		return nil, zerr.Wrap(err, "failed to read library directory")
	}

	var entries []domain.LibraryEntry
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		packageDir := filepath.Join(libraryRoot, dirEntry.Name())

		descData, err := os.ReadFile(filepath.Join(packageDir, "DESCRIPTION"))
		if err != nil {
			continue
		}
		desc, err := descriptor.Parse(descData)
		if err != nil {
			continue
		}

		entry := domain.LibraryEntry{Name: desc.Name, Version: desc.Version}

		if metaData, err := os.ReadFile(domain.InstalledMetaPath(packageDir)); err == nil {
			var meta domain.InstalledMeta
			if json.Unmarshal(metaData, &meta) == nil {
				entry.Source = meta.Source
				entry.Fingerprint = meta.Fingerprint
			}
		}

		entries = append(entries, entry)
	}

	return domain.NewLibrary(entries), nil
}

// Promote atomically renames the staged directory at stagingPath into its
// final library location, but only once its installed-metadata sidecar is
// present — the gate the sync pool's writeInstalledMeta step satisfies
// before ever calling Promote.
func (s *Store) Promote(ctx context.Context, stagingPath, finalPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(domain.InstalledMetaPath(stagingPath)); err != nil {
		return zerr.Wrap(ErrPromotionNotReady, stagingPath)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create library directory")
	}

	_ = os.RemoveAll(finalPath)

	if err := os.Rename(stagingPath, finalPath); err != nil {
		return zerr.Wrap(err, "failed to promote staged package")
	}
	return nil
}

// Remove deletes an installed package's tree.
func (s *Store) Remove(ctx context.Context, finalPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(finalPath); err != nil {
		return zerr.Wrap(err, "failed to remove installed package")
	}
	return nil
}

// CleanStaging removes a cancelled or failed install's staging directory.
func (s *Store) CleanStaging(stagingPath string) error {
	if err := os.RemoveAll(stagingPath); err != nil {
		return zerr.Wrap(err, "failed to clean staging directory")
	}
	return nil
}
