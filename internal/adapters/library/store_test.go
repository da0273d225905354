package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rv.dev/rv/internal/core/domain"
)

func writePackage(t *testing.T, root, name, version string, withMeta bool) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	desc := "Package: " + name + "\nVersion: " + version + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "DESCRIPTION"), []byte(desc), domain.FilePerm))
	if withMeta {
		meta := `{"name":"` + name + `","version":"` + version + `","source":1,"fingerprint":"abc123"}`
		require.NoError(t, os.WriteFile(domain.InstalledMetaPath(dir), []byte(meta), domain.FilePerm))
	}
	return dir
}

func TestCurrent_ReadsDescriptionAndSidecar(t *testing.T) {
	root := t.TempDir()
	writePackage(t, root, "dplyr", "1.1.4", true)

	lib, err := New().Current(root)
	require.NoError(t, err)
	require.Equal(t, 1, lib.Len())

	entry, ok := lib.Entry(domain.NewInternedString("dplyr"))
	require.True(t, ok)
	assert.Equal(t, "1.1.4", entry.Version.String())
	assert.Equal(t, domain.SourceGit, entry.Source)
	assert.Equal(t, "abc123", entry.Fingerprint)
}

func TestCurrent_SkipsDirectoryWithoutDescription(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-package"), domain.DirPerm))

	lib, err := New().Current(root)
	require.NoError(t, err)
	assert.Equal(t, 0, lib.Len())
}

func TestCurrent_MissingRootIsEmptyLibrary(t *testing.T) {
	lib, err := New().Current(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, 0, lib.Len())
}

func TestPromote_MissingSidecarErrors(t *testing.T) {
	root := t.TempDir()
	staged := filepath.Join(root, "staged")
	require.NoError(t, os.MkdirAll(staged, domain.DirPerm))

	err := New().Promote(context.Background(), staged, filepath.Join(root, "final"))
	assert.ErrorIs(t, err, ErrPromotionNotReady)
}

func TestPromote_RenamesStagedTreeIntoPlace(t *testing.T) {
	root := t.TempDir()
	staged := writePackage(t, root, "staged", "1.0.0", true)
	final := filepath.Join(root, "lib", "staged")

	require.NoError(t, New().Promote(context.Background(), staged, final))

	_, err := os.Stat(filepath.Join(final, "DESCRIPTION"))
	require.NoError(t, err)
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_DeletesInstalledTree(t *testing.T) {
	root := t.TempDir()
	dir := writePackage(t, root, "pkg", "1.0.0", true)

	require.NoError(t, New().Remove(context.Background(), dir))

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanStaging_RemovesStagingDirectory(t *testing.T) {
	root := t.TempDir()
	staged := filepath.Join(root, "staged")
	require.NoError(t, os.MkdirAll(staged, domain.DirPerm))

	require.NoError(t, New().CleanStaging(staged))

	_, err := os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}
