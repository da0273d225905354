package domain

import (
	"iter"
	"sort"

	"go.trai.ch/zerr"
)

var (
	// ErrMissingDependency is returned when a resolved node references a
	// dependency name that is absent from the resolution.
	ErrMissingDependency = zerr.New("resolution references a missing dependency")

	// ErrCycleDetected is returned when hard/linking edges form a cycle that
	// cannot be linearized without grouping (the planner groups it instead;
	// this sentinel is used where a caller explicitly rejects cycles).
	ErrCycleDetected = zerr.New("cycle detected in dependency graph")

	// ErrNodeAlreadyResolved is returned when a second write attempts to
	// overwrite an already-resolved node outside of the conflict-resolution
	// path (a resolver bug guard).
	ErrNodeAlreadyResolved = zerr.New("package already resolved")
)

// RepositorySourceInfo is ResolvedNode metadata specific to SourceRepository.
type RepositorySourceInfo struct {
	Alias       string
	URL         string
	DownloadURL string
	IsBinary    bool
}

// GitSourceInfo is ResolvedNode metadata specific to SourceGit.
type GitSourceInfo struct {
	URL          string
	Ref          GitRef
	ResolvedSHA  string
	Subdirectory string
}

// LocalSourceInfo is ResolvedNode metadata specific to SourceLocal.
type LocalSourceInfo struct {
	Path string
}

// URLSourceInfo is ResolvedNode metadata specific to SourceURL.
type URLSourceInfo struct {
	URL string
}

// ResolvedNode is the outcome of resolving one package name.
type ResolvedNode struct {
	Name    PackageName
	Version Version

	Source SourceKind
	Tier   Tier

	Repository *RepositorySourceInfo
	Git        *GitSourceInfo
	Local      *LocalSourceInfo
	URL        *URLSourceInfo

	// Dependencies is the ordered list of resolved dependency names this
	// node's edges were followed into (hard, linking, soft-as-hard, and
	// suggests when InstallSuggestions is set).
	Dependencies []PackageName

	ForceSource        bool
	InstallSuggestions bool
	DependenciesOnly   bool

	// Digest is the content digest of the archive, when known (set once a
	// source handler has downloaded and verified it).
	Digest string
}

// Resolution is the immutable outcome of a resolver run: a mapping from
// PackageName to ResolvedNode, plus a topological install order.
type Resolution struct {
	nodes map[PackageName]ResolvedNode
	order []PackageName

	// Cycles records groups of names that form a hard/linking cycle, in the
	// order the resolver discovered them. The planner installs each group as
	// a single named-order batch.
	cycles [][]PackageName
}

// NewResolution builds a Resolution from resolved nodes and a topological
// order. The order is not re-validated here; callers (the resolver) are
// responsible for producing a consistent order in their finalize step.
func NewResolution(nodes map[PackageName]ResolvedNode, order []PackageName, cycles [][]PackageName) (*Resolution, error) {
	for name, node := range nodes {
		for _, dep := range node.Dependencies {
			if _, ok := nodes[dep]; !ok {
				return nil, zerr.With(zerr.With(ErrMissingDependency, "package", name.String()), "dependency", dep.String())
			}
		}
	}

	return &Resolution{nodes: nodes, order: order, cycles: cycles}, nil
}

// Node returns the ResolvedNode for name and whether it was present.
func (r *Resolution) Node(name PackageName) (ResolvedNode, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Len returns the number of resolved nodes.
func (r *Resolution) Len() int {
	return len(r.nodes)
}

// Order returns the topological install order (dependencies before
// dependents).
func (r *Resolution) Order() []PackageName {
	return r.order
}

// Cycles returns the groups of names that form a hard/linking cycle.
func (r *Resolution) Cycles() [][]PackageName {
	return r.cycles
}

// All iterates resolved nodes in topological order.
func (r *Resolution) All() iter.Seq[ResolvedNode] {
	return func(yield func(ResolvedNode) bool) {
		for _, name := range r.order {
			if !yield(r.nodes[name]) {
				return
			}
		}
	}
}

// SortedNames returns every resolved name sorted lexicographically, useful
// for deterministic cycle-batch ordering (§4.6) and test assertions.
func (r *Resolution) SortedNames() []string {
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name.String())
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two Resolutions contain the same node names and,
// per node, the same name, version, source kind, digest, and dependency
// list; other node fields are not compared (used by the determinism
// property test, §8 property 4, and the round-trip test, §8).
func (r *Resolution) Equal(o *Resolution) bool {
	if r == nil || o == nil {
		return r == o
	}
	if len(r.nodes) != len(o.nodes) {
		return false
	}
	for name, n := range r.nodes {
		on, ok := o.nodes[name]
		if !ok {
			return false
		}
		if !nodeEqual(n, on) {
			return false
		}
	}
	return true
}

func nodeEqual(a, b ResolvedNode) bool {
	if a.Name != b.Name || !a.Version.Equal(b.Version) {
		return false
	}
	if a.Source != b.Source || a.Digest != b.Digest {
		return false
	}
	if len(a.Dependencies) != len(b.Dependencies) {
		return false
	}
	for i := range a.Dependencies {
		if a.Dependencies[i] != b.Dependencies[i] {
			return false
		}
	}
	return true
}
