package domain

import "go.trai.ch/zerr"

// Error kinds are flat, stable sentinels suitable for machine consumption
// (§7). Callers attach structured context with zerr.With at the point of
// detection; the CLI's --json error renderer reads that metadata instead of
// parsing messages.
var (
	// ErrManifestInvalid is a structural or semantic problem in the manifest.
	ErrManifestInvalid = zerr.New("manifest is invalid")

	// ErrRepositoryFetchFailed is returned when retries against an index URL
	// are exhausted.
	ErrRepositoryFetchFailed = zerr.New("repository fetch failed")

	// ErrVersionConflict is an empty intersection of hard requirements.
	ErrVersionConflict = zerr.New("version conflict")

	// ErrSourceConflict is an incompatible source-kind choice for a name
	// already resolved from a different tier.
	ErrSourceConflict = zerr.New("source conflict")

	// ErrPackageNotFound is returned when no tier could supply a name.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrArchiveDigestMismatch is returned when downloaded bytes disagree
	// with the recorded digest.
	ErrArchiveDigestMismatch = zerr.New("archive digest mismatch")

	// ErrGitRefUnresolved is returned when a branch/tag/commit is not found
	// after fetch.
	ErrGitRefUnresolved = zerr.New("git ref could not be resolved")

	// ErrDescriptorInvalidKind mirrors ErrDescriptorInvalid in descriptor.go
	// as a resolver-facing sentinel distinct from the parse-time one.
	ErrDescriptorInvalidKind = zerr.New("package descriptor invalid")

	// ErrBuildFailed is returned when the install subprocess exits non-zero.
	ErrBuildFailed = zerr.New("build failed")

	// ErrPackageInUse is returned when the open-file safety probe blocks a
	// removal.
	ErrPackageInUse = zerr.New("package in use")

	// ErrLockfileIncompatible is returned when the lockfile's format version
	// is unknown.
	ErrLockfileIncompatible = zerr.New("lockfile format is incompatible")

	// ErrCancelled is returned when a user signal was observed.
	ErrCancelled = zerr.New("operation cancelled")

	// ErrRepositoryAliasNotFound is returned by configure operations that
	// name a repository alias absent from the manifest.
	ErrRepositoryAliasNotFound = zerr.New("repository alias not found")

	// ErrRepositoryAliasExists is returned by "configure repository add"
	// when the alias is already in use.
	ErrRepositoryAliasExists = zerr.New("repository alias already exists")

	// ErrDependencyNotFound is returned when an operation names a
	// dependency absent from the manifest.
	ErrDependencyNotFound = zerr.New("dependency not found")

	// ErrDependencyExists is returned by add when the dependency is already
	// declared.
	ErrDependencyExists = zerr.New("dependency already declared")
)
