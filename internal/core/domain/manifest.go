package domain

import "go.trai.ch/zerr"

// ErrUnknownDependencyOption is returned when a dependency table carries an
// option this system does not recognize (§9: "Unknown options are
// ManifestInvalid").
var ErrUnknownDependencyOption = zerr.New("unknown dependency option")

// ErrAmbiguousSourceDiscriminant is returned when a dependency table names
// more than one of {path, git, url} (§9: "multiple is ManifestInvalid").
var ErrAmbiguousSourceDiscriminant = zerr.New("dependency names more than one source discriminant")

// Repository is one entry in the manifest's ordered repository list.
type Repository struct {
	Alias       string
	URL         string
	ForceSource bool
}

// DependencySpec is a tagged variant over the heterogeneous dependency forms
// the manifest accepts: a bare name (repository tier), a local path, a git
// ref, or a URL (§9).
type DependencySpec struct {
	Name string

	Source SourceKind // SourceRepository, SourceLocal, SourceGit, or SourceURL

	// RepositoryAlias restricts tier-4 search to one alias ("repository =
	// <alias>" option); only meaningful when Source == SourceRepository.
	RepositoryAlias string

	Path string // SourceLocal

	GitURL       string // SourceGit
	GitRef       GitRef // SourceGit
	Directory    string // SourceGit: subpath within the clone holding the descriptor

	URL string // SourceURL

	Requirement VersionRequirement

	InstallSuggestions bool
	ForceSource        bool
	DependenciesOnly   bool
}

// Manifest is the parsed project configuration.
type Manifest struct {
	UseLockfile   bool
	LockfileName  string
	LibraryOverride string

	ProjectName string
	RVersion    string

	Repositories []Repository
	Dependencies []DependencySpec

	// PreferRepositoriesFor is the set of top-level dependency names for
	// which a repository candidate is preferred over a remote when both can
	// satisfy the same version requirement (§4.5). Per the Open Question
	// resolution in DESIGN.md, this never applies transitively.
	PreferRepositoriesFor []string
}

// RepositoryByAlias returns the repository with the given alias, in
// manifest order, and whether it was found.
func (m *Manifest) RepositoryByAlias(alias string) (Repository, bool) {
	for _, r := range m.Repositories {
		if r.Alias == alias {
			return r, true
		}
	}
	return Repository{}, false
}

// PrefersRepository reports whether name is in PreferRepositoriesFor.
func (m *Manifest) PrefersRepository(name string) bool {
	for _, n := range m.PreferRepositoriesFor {
		if n == name {
			return true
		}
	}
	return false
}

// DefaultLockfileName is used when the manifest omits lockfile_name.
const DefaultLockfileName = "rv.lock"

// DefaultManifestName is the CLI's default manifest file name when --manifest
// is not given.
const DefaultManifestName = "rv.toml"
