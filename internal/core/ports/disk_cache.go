package ports

import "context"

// MaterializeMethod reports how the disk cache linked a cached entry into
// the library, observable to callers for diagnostics (§4.4).
type MaterializeMethod int

const (
	MaterializeHardlink MaterializeMethod = iota
	MaterializeReflink
	MaterializeSymlink
	MaterializeCopy
)

func (m MaterializeMethod) String() string {
	switch m {
	case MaterializeHardlink:
		return "hardlink"
	case MaterializeReflink:
		return "reflink"
	case MaterializeSymlink:
		return "symlink"
	case MaterializeCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// DiskCache is the content-addressed, version/architecture-partitioned
// store for repository indexes, downloaded archives, cloned git trees, and
// previously compiled binary packages.
//
//go:generate mockgen -source=disk_cache.go -destination=mocks/mock_disk_cache.go -package=mocks
type DiskCache interface {
	// Root returns the cache root directory in effect (respecting
	// RV_CACHE_DIR when set).
	Root() string

	// HasArchive reports whether an archive with the given SHA-256 digest is
	// already cached and its on-disk bytes match the digest.
	HasArchive(digest string) bool

	// WriteArchive writes data under the archive's content address,
	// atomically (write-to-temp then rename).
	WriteArchive(digest string, data []byte) (string, error)

	// ArchivePath returns the cache path an archive with this digest would
	// occupy, without checking existence.
	ArchivePath(digest string) string

	// HasBinary reports whether a previously compiled binary exists for
	// (engineVersion, arch, name, version, fingerprint).
	HasBinary(engineVersion, arch, name, version, fingerprint string) bool

	// BinaryPath returns the cache path for a compiled binary result.
	BinaryPath(engineVersion, arch, name, version, fingerprint string) string

	// WriteBinary copies a freshly built package tree at srcDir into the
	// binaries partition for (engineVersion, arch, name, version,
	// fingerprint), so a later sync run can materialize it instead of
	// rebuilding from source.
	WriteBinary(engineVersion, arch, name, version, fingerprint, srcDir string) error

	// GitPath returns the cache path for a repository's git clone, keyed by
	// URL.
	GitPath(url string) string

	// Materialize links or copies the cache entry at srcPath into destPath,
	// preferring hard links, then reflink/copy-on-write, then symlinks, and
	// finally a plain copy, moving to the next method only when the previous
	// one fails. The destination filesystem is not inspected, so a network
	// filesystem is not detected up front.
	Materialize(ctx context.Context, srcPath, destPath string) (MaterializeMethod, error)
}
