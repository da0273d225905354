package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.rv.dev/rv/internal/core/domain"
)

func TestLockfileEntry_RoundTrip(t *testing.T) {
	node := domain.ResolvedNode{
		Name:    domain.NewInternedString("dplyr"),
		Version: domain.MustParseVersion("1.1.3"),
		Source:  domain.SourceRepository,
		Repository: &domain.RepositorySourceInfo{
			Alias:       "cran",
			DownloadURL: "https://cran.example.org/dplyr_1.1.3.tar.gz",
			IsBinary:    false,
		},
		Dependencies: []domain.PackageName{domain.NewInternedString("rlang"), domain.NewInternedString("generics")},
		Digest:       "abc123",
	}

	entry := domain.FromResolvedNode(node)
	back, err := entry.ToResolvedNode()
	require.NoError(t, err)

	assert.Equal(t, node.Name, back.Name)
	assert.True(t, node.Version.Equal(back.Version))
	assert.Equal(t, node.Source, back.Source)
	assert.Equal(t, node.Repository.Alias, back.Repository.Alias)
	assert.Equal(t, node.Repository.DownloadURL, back.Repository.DownloadURL)
	assert.Equal(t, node.Digest, back.Digest)
	require.Len(t, back.Dependencies, 2)
	assert.Equal(t, "rlang", back.Dependencies[0].String())
}

func TestLockfile_EntryByName(t *testing.T) {
	lf := &domain.Lockfile{
		FormatVersion: domain.LockfileFormatVersion,
		Entries: []domain.LockfileEntry{
			{Name: "dplyr", Version: "1.1.2"},
		},
	}

	e, ok := lf.EntryByName("dplyr")
	require.True(t, ok)
	assert.Equal(t, "1.1.2", e.Version)

	_, ok = lf.EntryByName("missing")
	assert.False(t, ok)
}

func TestLockfileEntry_GitSource_RoundTrip(t *testing.T) {
	node := domain.ResolvedNode{
		Name:    domain.NewInternedString("dplyr"),
		Version: domain.MustParseVersion("1.2.0"),
		Source:  domain.SourceGit,
		Git: &domain.GitSourceInfo{
			URL:         "https://github.com/tidyverse/dplyr",
			Ref:         domain.GitRef{Kind: domain.GitRefTag, Value: "v1.2"},
			ResolvedSHA: "deadbeef",
		},
	}

	entry := domain.FromResolvedNode(node)
	back, err := entry.ToResolvedNode()
	require.NoError(t, err)

	require.NotNil(t, back.Git)
	assert.Equal(t, "deadbeef", back.Git.ResolvedSHA)
	assert.Equal(t, domain.GitRefTag, back.Git.Ref.Kind)
	assert.Equal(t, "v1.2", back.Git.Ref.Value)
}
