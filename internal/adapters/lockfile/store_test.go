package lockfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

func sampleLockfile() *domain.Lockfile {
	return &domain.Lockfile{
		FormatVersion: domain.LockfileFormatVersion,
		EngineVersion: "4.3.1",
		Architecture:  "x86_64-pc-linux-gnu",
		Entries: []domain.LockfileEntry{
			{
				Name:            "dplyr",
				Version:         "1.1.3",
				Source:          domain.SourceRepository,
				RepositoryAlias: "cran",
				RepositoryURL:   "https://cran.r-project.org",
				Dependencies:    []string{"generics", "rlang"},
				Digest:          "deadbeef",
			},
			{
				Name:   "generics",
				Version: "0.1.3",
				Source:  domain.SourceRepository,
			},
		},
	}
}

func TestSaveThenLoad_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rv.lock")
	store := New()

	original := sampleLockfile()
	require.NoError(t, store.Save(path, original))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, original.EngineVersion, loaded.EngineVersion)
	assert.Equal(t, original.Architecture, loaded.Architecture)
	require.Len(t, loaded.Entries, 2)
	assert.Equal(t, "dplyr", loaded.Entries[0].Name)
	assert.Equal(t, []string{"generics", "rlang"}, loaded.Entries[0].Dependencies)
}

func TestLoad_MissingFileReturnsNilNil(t *testing.T) {
	store := New()
	l, err := store.Load(filepath.Join(t.TempDir(), "does-not-exist.lock"))
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestLoad_CorruptedChecksumErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rv.lock")
	store := New()
	require.NoError(t, store.Save(path, sampleLockfile()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = store.Load(path)
	assert.ErrorIs(t, err, domain.ErrLockfileIncompatible)
}

func TestLoad_FormatVersionMismatchErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rv.lock")
	store := New()

	stale := sampleLockfile()
	stale.FormatVersion = domain.LockfileFormatVersion + 1
	require.NoError(t, store.Save(path, stale))

	_, err := store.Load(path)
	assert.ErrorIs(t, err, domain.ErrLockfileIncompatible)
}

func TestMarshalJSON_RendersSourceKindAsString(t *testing.T) {
	data, err := MarshalJSON(sampleLockfile())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source": "repository"`)
	assert.Contains(t, string(data), `"dplyr"`)
}
