package domain

import "go.trai.ch/zerr"

// ErrDescriptorInvalid is returned when a prepared package source lacks
// required metadata (corresponds to the DescriptorInvalid error kind).
var ErrDescriptorInvalid = zerr.New("package descriptor is missing required metadata")

// Remote is an upstream reference embedded in a package descriptor, naming
// where a dependency of this package should be fetched from (e.g. a specific
// git fork) rather than from a repository index.
type Remote struct {
	DependencyName PackageName
	GitURL         string
	Ref            GitRef
	Subdirectory   string
	Requirement    VersionRequirement
}

// PackageDescriptor is the parsed metadata from a prepared package source
// tree (a DESCRIPTION-style paragraph, in this ecosystem).
type PackageDescriptor struct {
	Name             PackageName
	Version          Version
	Edges            []Edge
	SystemLibraryHints []string
	Remotes          []Remote
	IsBinary         bool
}

// Validate checks the invariants a descriptor must uphold before it can be
// turned into a PackageDescriptor: both Name and Version are required.
func (d PackageDescriptor) Validate() error {
	if d.Name.String() == "" {
		return zerr.With(ErrDescriptorInvalid, "field", "name")
	}
	if d.Version.IsZero() {
		return zerr.With(ErrDescriptorInvalid, "field", "version")
	}
	return nil
}

// MergeEdges combines raw (name, requirement, kind) tuples that may repeat a
// name across multiple dependency categories, keeping the strongest kind and
// intersecting requirements for each name, per §4.2.
func MergeEdges(raw []Edge) []Edge {
	order := make([]PackageName, 0, len(raw))
	byName := make(map[PackageName]Edge, len(raw))

	for _, e := range raw {
		existing, ok := byName[e.Name]
		if !ok {
			byName[e.Name] = e
			order = append(order, e.Name)
			continue
		}

		merged := existing
		if e.Kind.StrongerThan(existing.Kind) {
			merged.Kind = e.Kind
		}
		merged.Requirement = merged.Requirement.Intersect(e.Requirement)
		byName[e.Name] = merged
	}

	out := make([]Edge, 0, len(order))
	for _, name := range order {
		out = append(out, byName[name])
	}
	return out
}
