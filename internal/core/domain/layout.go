package domain

import "path/filepath"

const (
	// ReposDirName holds per-repository cached indexes.
	ReposDirName = "repos"

	// ArchivesDirName holds downloaded package archives, content-addressed.
	ArchivesDirName = "archives"

	// GitDirName holds cloned/working git trees, keyed by repository URL hash.
	GitDirName = "git"

	// BinariesDirName holds locally compiled binary results.
	BinariesDirName = "binaries"

	// LogsDirName holds per-package install logs.
	LogsDirName = "logs"

	// StateFileName is the small metadata file tracking fetch times and
	// format version.
	StateFileName = "state.bincode"

	// IndexFileName is the name of the parsed+raw index file within a
	// repository's cache directory.
	IndexFileName = "INDEX"

	// StagingDirName is the transient per-install directory name under the
	// library root.
	StagingDirName = ".staging"

	// InstalledMetaFileName is the small per-package sidecar promotion
	// checks for before the atomic directory rename, and Current() later
	// reads to recover what DESCRIPTION alone can't carry: source kind and
	// the tree fingerprint recorded at install time.
	InstalledMetaFileName = ".rv-installed.json"

	// DirPerm is the default permission for directories.
	DirPerm = 0o750

	// FilePerm is the default permission for files.
	FilePerm = 0o644
)

// ReposPath returns the cache path for a repository's index:
// repos/<hash-of-url>/<engine-version>/<arch>/INDEX.
func ReposPath(cacheRoot, urlHash, engineVersion, arch string) string {
	return filepath.Join(cacheRoot, ReposDirName, urlHash, engineVersion, arch, IndexFileName)
}

// ArchivePath returns the cache path for an archive named by its SHA-256
// digest: archives/<sha256-prefix>/<sha256>.
func ArchivePath(cacheRoot, digest string) string {
	prefix := digest
	if len(digest) >= 2 {
		prefix = digest[:2]
	}
	return filepath.Join(cacheRoot, ArchivesDirName, prefix, digest)
}

// GitPath returns the cache path for a git clone, keyed by URL hash:
// git/<hash-of-url>/.
func GitPath(cacheRoot, urlHash string) string {
	return filepath.Join(cacheRoot, GitDirName, urlHash)
}

// BinaryPath returns the cache path for a locally compiled binary result:
// binaries/<engine-version>/<arch>/<name>-<version>-<digest>/.
func BinaryPath(cacheRoot, engineVersion, arch, name, version, fingerprint string) string {
	dirName := name + "-" + version + "-" + fingerprint
	return filepath.Join(cacheRoot, BinariesDirName, engineVersion, arch, dirName)
}

// StatePath returns the cache path for the small cross-run metadata file.
func StatePath(cacheRoot string) string {
	return filepath.Join(cacheRoot, StateFileName)
}

// LogsPath returns the cache path for a package's captured install log.
func LogsPath(cacheRoot, name, version string) string {
	return filepath.Join(cacheRoot, LogsDirName, name+"-"+version+".log")
}

// LibraryPackagePath returns the persisted location for an installed
// package: library/<engine-version>/<arch>/<package>/, unless override is
// set, in which case the namespacing is dropped and the package is written
// directly under it.
func LibraryPackagePath(libraryRoot, override, engineVersion, arch, name string) string {
	if override != "" {
		return filepath.Join(override, name)
	}
	return filepath.Join(libraryRoot, engineVersion, arch, name)
}

// StagingPath returns the transient staging directory for one install:
// library/.staging/<name>-<version>/.
func StagingPath(libraryRoot, name, version string) string {
	return filepath.Join(libraryRoot, StagingDirName, name+"-"+version)
}

// InstalledMetaPath returns the sidecar metadata path within an installed
// (or staged) package tree.
func InstalledMetaPath(packageDir string) string {
	return filepath.Join(packageDir, InstalledMetaFileName)
}
