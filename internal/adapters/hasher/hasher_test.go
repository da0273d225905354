package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func TestFingerprintTree_DeterministicAcrossWalkOrder(t *testing.T) {
	a := writeTree(t, map[string]string{
		"R/dplyr.R":    "a",
		"man/dplyr.Rd": "b",
		"DESCRIPTION":  "c",
	})
	b := writeTree(t, map[string]string{
		"DESCRIPTION":  "c",
		"man/dplyr.Rd": "b",
		"R/dplyr.R":    "a",
	})

	h := New()
	fa, err := h.FingerprintTree(a)
	require.NoError(t, err)
	fb, err := h.FingerprintTree(b)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.NotEmpty(t, fa)
}

func TestFingerprintTree_DetectsContentDrift(t *testing.T) {
	h := New()

	orig := writeTree(t, map[string]string{"R/dplyr.R": "version one"})
	changed := writeTree(t, map[string]string{"R/dplyr.R": "version two"})

	f1, err := h.FingerprintTree(orig)
	require.NoError(t, err)
	f2, err := h.FingerprintTree(changed)
	require.NoError(t, err)

	assert.NotEqual(t, f1, f2)
}

func TestFingerprintTree_DetectsAddedFile(t *testing.T) {
	h := New()

	orig := writeTree(t, map[string]string{"R/dplyr.R": "x"})
	added := writeTree(t, map[string]string{"R/dplyr.R": "x", "R/extra.R": "y"})

	f1, err := h.FingerprintTree(orig)
	require.NoError(t, err)
	f2, err := h.FingerprintTree(added)
	require.NoError(t, err)

	assert.NotEqual(t, f1, f2)
}

func TestFingerprintTree_UnreadablePathErrors(t *testing.T) {
	h := New()
	_, err := h.FingerprintTree(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrTreeUnreadable)
}

func TestDigestBytes_KnownVector(t *testing.T) {
	h := New()
	// sha256("") is a well-known constant.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", h.DigestBytes(nil))
	assert.NotEqual(t, h.DigestBytes([]byte("a")), h.DigestBytes([]byte("b")))
}
