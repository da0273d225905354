package domain

// IndexFormat discriminates which wire format a RepositoryIndex was parsed
// from.
type IndexFormat int

const (
	// IndexFormatDCF is the line-oriented "field: value" paragraph format.
	IndexFormatDCF IndexFormat = iota
	// IndexFormatJSON is the JSON-object wire format used by one known
	// repository family.
	IndexFormatJSON
)

func (f IndexFormat) String() string {
	switch f {
	case IndexFormatDCF:
		return "dcf"
	case IndexFormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// IndexEntry is one (version, download path) row for a package within a
// RepositoryIndex.
type IndexEntry struct {
	Version    Version
	DownloadURL string
	Digest     string
	IsBinary   bool
	Edges      []Edge
}

// PackageEntries is the full per-package row of a RepositoryIndex: its
// latest version and every (version, ...) entry available.
type PackageEntries struct {
	Latest  Version
	Entries []IndexEntry
}

// RepositoryIndex is the parsed catalog for one repository, keyed by
// (repository URL, architecture, engine version) at the cache layer; the
// struct itself only carries the package map and bookkeeping fields.
type RepositoryIndex struct {
	RepositoryURL string
	Architecture  string
	EngineVersion string
	Format        IndexFormat
	FetchedAt     int64 // unix seconds; stamped by the caller, never by this type
	Packages      map[PackageName]PackageEntries
}

// BestCandidate selects the best version satisfying req among this
// repository's entries for name, per the §4.1/§4.5 tie-break: (1) satisfies
// requirement; (2) binary beats source; (3) higher version. With forceSource,
// binary entries are not candidates at all. Repository-order
// tie-breaking is the resolver's responsibility across multiple indexes.
func (idx *RepositoryIndex) BestCandidate(name PackageName, req VersionRequirement, forceSource bool) (IndexEntry, bool) {
	pkg, ok := idx.Packages[name]
	if !ok {
		return IndexEntry{}, false
	}

	var best IndexEntry
	found := false

	for _, e := range pkg.Entries {
		if !req.Satisfies(e.Version) {
			continue
		}
		if forceSource && e.IsBinary {
			continue
		}
		if !found {
			best, found = e, true
			continue
		}
		if better(e, best, forceSource) {
			best = e
		}
	}

	return best, found
}

func better(candidate, current IndexEntry, forceSource bool) bool {
	candBinary := candidate.IsBinary && !forceSource
	curBinary := current.IsBinary && !forceSource

	if candBinary != curBinary {
		return candBinary
	}
	return candidate.Version.Compare(current.Version) > 0
}
