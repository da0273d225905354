package resolver

import (
	"context"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

type fakeFetcher struct {
	indexes map[string]*domain.RepositoryIndex // by repository URL
	errs    map[string]error
}

func (f *fakeFetcher) FetchIndex(_ context.Context, repo domain.Repository, _, _ string) (*domain.RepositoryIndex, error) {
	if err, ok := f.errs[repo.URL]; ok {
		return nil, err
	}
	return f.indexes[repo.URL], nil
}

type fakeHandler struct {
	kind   domain.SourceKind
	descs  map[string]domain.PackageDescriptor // keyed by git URL or path
	errs   map[string]error
}

func (f *fakeHandler) Kind() domain.SourceKind { return f.kind }

func (f *fakeHandler) DescribeOnly(_ context.Context, node domain.ResolvedNode) (domain.PackageDescriptor, error) {
	key := f.key(node)
	if err, ok := f.errs[key]; ok {
		return domain.PackageDescriptor{}, err
	}
	return f.descs[key], nil
}

func (f *fakeHandler) Stage(_ context.Context, node domain.ResolvedNode) (ports.StagedSource, error) {
	return ports.StagedSource{}, nil
}

func (f *fakeHandler) key(node domain.ResolvedNode) string {
	switch {
	case node.Git != nil:
		return node.Git.URL
	case node.Local != nil:
		return node.Local.Path
	case node.URL != nil:
		return node.URL.URL
	default:
		return node.Name.String()
	}
}

type fakeLogger struct{}

func (fakeLogger) Info(string)  {}
func (fakeLogger) Warn(string)  {}
func (fakeLogger) Error(error)  {}

func mustReq(s string) domain.VersionRequirement {
	r, err := domain.ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

func mustVersion(s string) domain.Version {
	v, err := domain.ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func indexWith(url string, packages map[string]domain.PackageEntries) *domain.RepositoryIndex {
	pkgs := make(map[domain.PackageName]domain.PackageEntries, len(packages))
	for name, entries := range packages {
		pkgs[domain.NewInternedString(name)] = entries
	}
	return &domain.RepositoryIndex{RepositoryURL: url, Packages: pkgs}
}

func entry(version string, edges ...domain.Edge) domain.IndexEntry {
	return domain.IndexEntry{Version: mustVersion(version), DownloadURL: "https://example/" + version, Edges: edges}
}

func edge(name, req string, kind domain.DependencyKind) domain.Edge {
	return domain.Edge{Name: domain.NewInternedString(name), Requirement: mustReq(req), Kind: kind}
}
