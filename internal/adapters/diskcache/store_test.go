package diskcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/ports"
)

func TestWriteArchiveAndHasArchive(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	data := []byte("DESCRIPTION\nPackage: dplyr\n")
	// sha256 of data, computed independently of the store's own HasArchive
	// logic so the test doesn't just check self-consistency.
	digest := "3989bef628d1b5ff8c17b96bda2daa2f778931a60911405ce54ed250813b05cb"

	path, err := s.WriteArchive(digest, data)
	require.NoError(t, err)
	assert.Equal(t, s.ArchivePath(digest), path)
	assert.True(t, s.HasArchive(digest))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, contents)
}

func TestHasArchive_MissingIsFalse(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	assert.False(t, s.HasArchive("0000000000000000000000000000000000000000000000000000000000000000"))
}

func TestHasArchive_RejectsTamperedContents(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	digest := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	path, err := s.WriteArchive(digest, []byte("original"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("tampered"), 0o644))
	assert.False(t, s.HasArchive(digest))
}

func TestBinaryPath_RoundTripsWithHasBinary(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	assert.False(t, s.HasBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123"))

	path := s.BinaryPath("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123")
	require.NoError(t, os.MkdirAll(path, 0o750))

	assert.True(t, s.HasBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123"))
}

func TestWriteBinary_RoundTripsWithHasBinary(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "DESCRIPTION"), []byte("Package: dplyr\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "libs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "libs", "dplyr.so"), []byte("binary"), 0o644))

	require.NoError(t, s.WriteBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123", src))
	assert.True(t, s.HasBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123"))

	path := s.BinaryPath("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123")
	contents, err := os.ReadFile(filepath.Join(path, "libs", "dplyr.so"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(contents))
}

func TestWriteBinary_ExistingEntryLeftUntouched(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	srcA := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcA, "DESCRIPTION"), []byte("first"), 0o644))
	require.NoError(t, s.WriteBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123", srcA))

	srcB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcB, "DESCRIPTION"), []byte("second"), 0o644))
	require.NoError(t, s.WriteBinary("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123", srcB))

	path := s.BinaryPath("4.3", "linux-x86_64", "dplyr", "1.1.3", "abc123")
	contents, err := os.ReadFile(filepath.Join(path, "DESCRIPTION"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(contents))
}

func TestGitPath_StableForSameURL(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	a := s.GitPath("https://github.com/tidyverse/dplyr")
	b := s.GitPath("https://github.com/tidyverse/dplyr")
	c := s.GitPath("https://github.com/tidyverse/ggplot2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestMaterialize_PrefersHardlink(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	src := filepath.Join(root, "src-binary")
	require.NoError(t, os.WriteFile(src, []byte("compiled"), 0o644))
	dest := filepath.Join(root, "lib", "dplyr")

	method, err := s.Materialize(context.Background(), src, dest)
	require.NoError(t, err)
	assert.Equal(t, ports.MaterializeHardlink, method)

	contents, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "compiled", string(contents))
}

func TestMaterialize_CancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Materialize(ctx, "src", "dest")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordFetchAndLastFetch_PersistsAcrossOpen(t *testing.T) {
	root := t.TempDir()
	s1, err := New(root)
	require.NoError(t, err)

	at := time.Now().Truncate(time.Second)
	require.NoError(t, s1.RecordFetch("cran", at))

	s2, err := New(root)
	require.NoError(t, err)
	got, ok := s2.LastFetch("cran")
	require.True(t, ok)
	assert.True(t, got.Equal(at))
}

func TestLastFetch_UnknownAliasIsMiss(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	_, ok := s.LastFetch("never-fetched")
	assert.False(t, ok)
}
