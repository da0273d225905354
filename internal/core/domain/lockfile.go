package domain

// LockfileFormatVersion is incremented on any schema change; readers reject
// a mismatched version with ErrLockfileIncompatible and force a full
// re-resolve (§6).
const LockfileFormatVersion = 1

// LockfileEntry is the persisted form of one ResolvedNode.
type LockfileEntry struct {
	Name    string
	Version string

	Source SourceKind

	RepositoryAlias string
	RepositoryURL   string
	DownloadURL     string
	IsBinary        bool

	GitURL       string
	GitRefKind   GitRefKind
	GitRefValue  string
	GitSHA       string
	Subdirectory string

	LocalPath string

	URL string

	Dependencies []string

	ForceSource        bool
	InstallSuggestions bool
	DependenciesOnly   bool

	Digest string
}

// Lockfile is the persisted form of a Resolution.
type Lockfile struct {
	FormatVersion int
	EngineVersion string
	Architecture  string
	Entries       []LockfileEntry
}

// EntryByName returns the entry for name and whether it was found.
func (l *Lockfile) EntryByName(name string) (LockfileEntry, bool) {
	for _, e := range l.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return LockfileEntry{}, false
}

// ToResolvedNode converts a lockfile entry back into a ResolvedNode.
func (e LockfileEntry) ToResolvedNode() (ResolvedNode, error) {
	v, err := ParseVersion(e.Version)
	if err != nil {
		return ResolvedNode{}, err
	}

	deps := make([]PackageName, len(e.Dependencies))
	for i, d := range e.Dependencies {
		deps[i] = NewInternedString(d)
	}

	node := ResolvedNode{
		Name:               NewInternedString(e.Name),
		Version:            v,
		Source:             e.Source,
		Tier:               TierLockfile,
		Dependencies:       deps,
		ForceSource:        e.ForceSource,
		InstallSuggestions: e.InstallSuggestions,
		DependenciesOnly:   e.DependenciesOnly,
		Digest:             e.Digest,
	}

	switch e.Source {
	case SourceRepository:
		node.Repository = &RepositorySourceInfo{
			Alias:       e.RepositoryAlias,
			URL:         e.RepositoryURL,
			DownloadURL: e.DownloadURL,
			IsBinary:    e.IsBinary,
		}
	case SourceGit:
		node.Git = &GitSourceInfo{
			URL:          e.GitURL,
			Ref:          GitRef{Kind: e.GitRefKind, Value: e.GitRefValue},
			ResolvedSHA:  e.GitSHA,
			Subdirectory: e.Subdirectory,
		}
	case SourceLocal:
		node.Local = &LocalSourceInfo{Path: e.LocalPath}
	case SourceURL:
		node.URL = &URLSourceInfo{URL: e.URL}
	}

	return node, nil
}

// FromResolvedNode converts a ResolvedNode into its persisted lockfile form.
func FromResolvedNode(n ResolvedNode) LockfileEntry {
	e := LockfileEntry{
		Name:               n.Name.String(),
		Version:            n.Version.String(),
		Source:             n.Source,
		ForceSource:        n.ForceSource,
		InstallSuggestions: n.InstallSuggestions,
		DependenciesOnly:   n.DependenciesOnly,
		Digest:             n.Digest,
	}

	e.Dependencies = make([]string, len(n.Dependencies))
	for i, d := range n.Dependencies {
		e.Dependencies[i] = d.String()
	}

	switch n.Source {
	case SourceRepository:
		if n.Repository != nil {
			e.RepositoryAlias = n.Repository.Alias
			e.RepositoryURL = n.Repository.URL
			e.DownloadURL = n.Repository.DownloadURL
			e.IsBinary = n.Repository.IsBinary
		}
	case SourceGit:
		if n.Git != nil {
			e.GitURL = n.Git.URL
			e.GitRefKind = n.Git.Ref.Kind
			e.GitRefValue = n.Git.Ref.Value
			e.GitSHA = n.Git.ResolvedSHA
			e.Subdirectory = n.Git.Subdirectory
		}
	case SourceLocal:
		if n.Local != nil {
			e.LocalPath = n.Local.Path
		}
	case SourceURL:
		if n.URL != nil {
			e.URL = n.URL.URL
		}
	}

	return e
}
