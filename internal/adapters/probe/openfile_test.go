package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesInUse_NoMatchesIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "placeholder"), []byte("x"), 0o644))

	p := NewOpenFileProbe()
	handles, err := p.NamesInUse(dir)
	require.NoError(t, err)
	assert.Empty(t, handles)
}

func TestPackageNameFromPath_ExtractsFirstSegment(t *testing.T) {
	name := packageNameFromPath("/cache/library/4.3.1/x86_64", "/cache/library/4.3.1/x86_64/dplyr/libs/dplyr.so")
	assert.Equal(t, "dplyr", name)
}
