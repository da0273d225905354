package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.rv.dev/rv/internal/core/domain"
)

func baseManifest() *domain.Manifest {
	return &domain.Manifest{
		ProjectName:  "proj",
		Repositories: []domain.Repository{{Alias: "A", URL: "https://cran.example/A"}},
		Dependencies: []domain.DependencySpec{
			{Name: "dplyr", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
		},
	}
}

func baseFetcher() *fakeFetcher {
	return &fakeFetcher{
		indexes: map[string]*domain.RepositoryIndex{
			"https://cran.example/A": indexWith("https://cran.example/A", map[string]domain.PackageEntries{
				"dplyr": {Entries: []domain.IndexEntry{
					entry("1.1.3",
						edge("generics", ">= 0.1", domain.DependencyHard),
						edge("rlang", "", domain.DependencyHard),
					),
				}},
				"generics": {Entries: []domain.IndexEntry{entry("0.1.3")}},
				"rlang":    {Entries: []domain.IndexEntry{entry("1.1.1")}},
			}),
		},
	}
}

// S1: fresh resolve with no lockfile picks the repository's highest version
// and returns a valid topological order.
func TestResolve_S1_FreshRepositoryResolve(t *testing.T) {
	r := New(baseFetcher(), nil, fakeLogger{})

	res, _, err := r.Resolve(context.Background(), baseManifest(), nil, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, res.Len())

	dplyr, ok := res.Node(domain.NewInternedString("dplyr"))
	require.True(t, ok)
	assert.Equal(t, "1.1.3", dplyr.Version.String())
	assert.Equal(t, domain.TierRepository, dplyr.Tier)

	order := res.Order()
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n.String()] = i
	}
	assert.Less(t, pos["generics"], pos["dplyr"])
	assert.Less(t, pos["rlang"], pos["dplyr"])
}

// S2: a lockfile pin beats the repository tier when it still satisfies the
// requirement and the repository remains declared.
func TestResolve_S2_LockfilePinWins(t *testing.T) {
	r := New(baseFetcher(), nil, fakeLogger{})

	lockfile := &domain.Lockfile{
		FormatVersion: domain.LockfileFormatVersion,
		Entries: []domain.LockfileEntry{
			{
				Name:            "dplyr",
				Version:         "1.1.2",
				Source:          domain.SourceRepository,
				RepositoryAlias: "A",
				RepositoryURL:   "https://cran.example/A",
			},
		},
	}

	res, _, err := r.Resolve(context.Background(), baseManifest(), lockfile, nil, Options{})
	require.NoError(t, err)

	dplyr, ok := res.Node(domain.NewInternedString("dplyr"))
	require.True(t, ok)
	assert.Equal(t, "1.1.2", dplyr.Version.String())
	assert.Equal(t, domain.TierLockfile, dplyr.Tier)
}

// S3: FullUpgrade disables the lockfile tier even when one is present.
func TestResolve_S3_FullUpgradeIgnoresLockfile(t *testing.T) {
	r := New(baseFetcher(), nil, fakeLogger{})

	lockfile := &domain.Lockfile{
		Entries: []domain.LockfileEntry{
			{Name: "dplyr", Version: "1.1.2", Source: domain.SourceRepository, RepositoryAlias: "A", RepositoryURL: "https://cran.example/A"},
		},
	}

	res, _, err := r.Resolve(context.Background(), baseManifest(), lockfile, nil, Options{FullUpgrade: true})
	require.NoError(t, err)

	dplyr, _ := res.Node(domain.NewInternedString("dplyr"))
	assert.Equal(t, "1.1.3", dplyr.Version.String())
	assert.Equal(t, domain.TierRepository, dplyr.Tier)
}

// S4: a plain repository-tier dependency that resolves first conflicts with
// a sibling declaration of the same name naming an explicit git source.
func TestResolve_S4_SourceConflict(t *testing.T) {
	manifest := baseManifest()
	manifest.Dependencies = append(manifest.Dependencies, domain.DependencySpec{
		Name:        "dplyr",
		Source:      domain.SourceGit,
		GitURL:      "https://github.com/tidyverse/dplyr",
		GitRef:      domain.GitRef{Kind: domain.GitRefTag, Value: "v1.2"},
		Requirement: domain.AnyVersion(),
	})

	r := New(baseFetcher(), nil, fakeLogger{})
	_, _, err := r.Resolve(context.Background(), manifest, nil, nil, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceConflict)
}

// S5: two top-level requirements on the same transitive name with disjoint
// ranges produce a VersionConflict.
func TestResolve_S5_VersionConflict(t *testing.T) {
	fetcher := &fakeFetcher{
		indexes: map[string]*domain.RepositoryIndex{
			"https://cran.example/A": indexWith("https://cran.example/A", map[string]domain.PackageEntries{
				"pkga": {Entries: []domain.IndexEntry{entry("1.0.0", edge("rlang", ">= 1.0", domain.DependencyHard))}},
				"pkgb": {Entries: []domain.IndexEntry{entry("1.0.0", edge("rlang", "< 1.0", domain.DependencyHard))}},
				"rlang": {Entries: []domain.IndexEntry{entry("1.1.1"), entry("0.9.0")}},
			}),
		},
	}

	manifest := &domain.Manifest{
		Repositories: []domain.Repository{{Alias: "A", URL: "https://cran.example/A"}},
		Dependencies: []domain.DependencySpec{
			{Name: "pkga", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
			{Name: "pkgb", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
		},
	}

	r := New(fetcher, nil, fakeLogger{})
	_, _, err := r.Resolve(context.Background(), manifest, nil, nil, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestResolve_BuiltinTierShortCircuits(t *testing.T) {
	manifest := &domain.Manifest{
		Dependencies: []domain.DependencySpec{
			{Name: "base", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
		},
	}
	builtins, err := domain.NewBuiltinSet(map[string]string{"base": "4.3.0"})
	require.NoError(t, err)

	r := New(&fakeFetcher{}, nil, fakeLogger{})
	res, _, err := r.Resolve(context.Background(), manifest, nil, builtins, Options{})
	require.NoError(t, err)

	node, ok := res.Node(domain.NewInternedString("base"))
	require.True(t, ok)
	assert.Equal(t, domain.TierBuiltin, node.Tier)
}

func TestResolve_PackageNotFound(t *testing.T) {
	manifest := &domain.Manifest{
		Dependencies: []domain.DependencySpec{
			{Name: "nope", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
		},
	}

	r := New(&fakeFetcher{}, nil, fakeLogger{})
	_, _, err := r.Resolve(context.Background(), manifest, nil, nil, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestResolve_RepositoryTieBreak_EarlierRepositoryWins(t *testing.T) {
	fetcher := &fakeFetcher{
		indexes: map[string]*domain.RepositoryIndex{
			"https://cran.example/A": indexWith("https://cran.example/A", map[string]domain.PackageEntries{
				"dplyr": {Entries: []domain.IndexEntry{entry("1.1.3")}},
			}),
			"https://cran.example/B": indexWith("https://cran.example/B", map[string]domain.PackageEntries{
				"dplyr": {Entries: []domain.IndexEntry{entry("1.1.3")}},
			}),
		},
	}

	manifest := &domain.Manifest{
		Repositories: []domain.Repository{
			{Alias: "A", URL: "https://cran.example/A"},
			{Alias: "B", URL: "https://cran.example/B"},
		},
		Dependencies: []domain.DependencySpec{
			{Name: "dplyr", Source: domain.SourceRepository, Requirement: domain.AnyVersion()},
		},
	}

	r := New(fetcher, nil, fakeLogger{})
	res, _, err := r.Resolve(context.Background(), manifest, nil, nil, Options{})
	require.NoError(t, err)

	node, _ := res.Node(domain.NewInternedString("dplyr"))
	require.NotNil(t, node.Repository)
	assert.Equal(t, "A", node.Repository.Alias)
}
