package ports

import "go.rv.dev/rv/internal/core/domain"

// ManifestLoader reads and writes the TOML project manifest.
//
//go:generate mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads and validates the manifest at path.
	Load(path string) (*domain.Manifest, error)

	// Write formats and writes m to path, matching the canonical
	// formatting `configure` commands produce.
	Write(path string, m *domain.Manifest) error
}
