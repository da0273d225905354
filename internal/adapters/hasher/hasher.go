// Package hasher implements ports.Hasher: a fast, non-cryptographic tree
// fingerprint for change detection, and a content digest for archive
// verification.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// ErrTreeUnreadable is returned when a directory tree cannot be walked.
var ErrTreeUnreadable = zerr.New("fingerprint: tree is unreadable")

// Hasher implements ports.Hasher.
type Hasher struct{}

// New builds a Hasher.
func New() *Hasher {
	return &Hasher{}
}

// FingerprintTree walks path in sorted, deterministic order and folds every
// regular file's relative path and contents into one xxhash digest. Two
// trees with identical contents at identical relative paths always produce
// the same fingerprint, regardless of walk order or mtimes.
func (h *Hasher) FingerprintTree(path string) (string, error) {
	var paths []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(path, p)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return "", zerr.Wrap(ErrTreeUnreadable, err.Error())
	}

	sort.Strings(paths)

	digest := xxhash.New()
	for _, rel := range paths {
		if _, err := io.WriteString(digest, rel); err != nil {
			return "", zerr.Wrap(err, "fingerprint tree")
		}
		digest.Write([]byte{0})

		f, err := os.Open(filepath.Join(path, rel))
		if err != nil {
			return "", zerr.Wrap(err, "fingerprint tree")
		}
		_, err = io.Copy(digest, f)
		f.Close()
		if err != nil {
			return "", zerr.Wrap(err, "fingerprint tree")
		}
		digest.Write([]byte{0})
	}

	return hex.EncodeToString(digest.Sum(nil)), nil
}

// DigestBytes computes the SHA-256 content digest of data, used to verify a
// downloaded archive against a repository index's recorded digest (§4.4).
func (h *Hasher) DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
