package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.rv.dev/rv/internal/core/domain"
)

func TestRepositoryIndex_BestCandidate_PicksHigherVersion(t *testing.T) {
	dplyr := domain.NewInternedString("dplyr")
	idx := &domain.RepositoryIndex{
		Packages: map[domain.PackageName]domain.PackageEntries{
			dplyr: {
				Entries: []domain.IndexEntry{
					{Version: domain.MustParseVersion("1.1.2")},
					{Version: domain.MustParseVersion("1.1.3")},
				},
			},
		},
	}

	got, ok := idx.BestCandidate(dplyr, domain.AnyVersion(), false)
	assert.True(t, ok)
	assert.True(t, got.Version.Equal(domain.MustParseVersion("1.1.3")))
}

func TestRepositoryIndex_BestCandidate_BinaryBeatsSource(t *testing.T) {
	pkg := domain.NewInternedString("dplyr")
	idx := &domain.RepositoryIndex{
		Packages: map[domain.PackageName]domain.PackageEntries{
			pkg: {
				Entries: []domain.IndexEntry{
					{Version: domain.MustParseVersion("1.1.3"), IsBinary: false},
					{Version: domain.MustParseVersion("1.1.3"), IsBinary: true},
				},
			},
		},
	}

	got, ok := idx.BestCandidate(pkg, domain.AnyVersion(), false)
	assert.True(t, ok)
	assert.True(t, got.IsBinary)
}

func TestRepositoryIndex_BestCandidate_ForceSourceIgnoresBinary(t *testing.T) {
	pkg := domain.NewInternedString("dplyr")
	idx := &domain.RepositoryIndex{
		Packages: map[domain.PackageName]domain.PackageEntries{
			pkg: {
				Entries: []domain.IndexEntry{
					{Version: domain.MustParseVersion("1.1.2"), IsBinary: false},
					{Version: domain.MustParseVersion("1.1.3"), IsBinary: true},
				},
			},
		},
	}

	got, ok := idx.BestCandidate(pkg, domain.AnyVersion(), true)
	assert.True(t, ok)
	assert.True(t, got.Version.Equal(domain.MustParseVersion("1.1.2")))
	assert.False(t, got.IsBinary)
}

func TestRepositoryIndex_BestCandidate_RespectsRequirement(t *testing.T) {
	pkg := domain.NewInternedString("dplyr")
	idx := &domain.RepositoryIndex{
		Packages: map[domain.PackageName]domain.PackageEntries{
			pkg: {
				Entries: []domain.IndexEntry{
					{Version: domain.MustParseVersion("1.1.2")},
					{Version: domain.MustParseVersion("1.1.3")},
				},
			},
		},
	}

	req, err := domain.ParseRequirement("= 1.1.2")
	assert.NoError(t, err)

	got, ok := idx.BestCandidate(pkg, req, false)
	assert.True(t, ok)
	assert.True(t, got.Version.Equal(domain.MustParseVersion("1.1.2")))
}

func TestRepositoryIndex_BestCandidate_NotFound(t *testing.T) {
	idx := &domain.RepositoryIndex{Packages: map[domain.PackageName]domain.PackageEntries{}}
	_, ok := idx.BestCandidate(domain.NewInternedString("missing"), domain.AnyVersion(), false)
	assert.False(t, ok)
}
