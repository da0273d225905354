// Package lockfile implements ports.LockfileStore as a checksummed binary
// encoding of domain.Lockfile, plus a JSON rendering (MarshalJSON) that no
// CLI command calls.
package lockfile

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

// magic distinguishes this format from an arbitrary file at the configured
// lockfile path; it precedes the checksum in every write.
const magic = "rvlk"

// Store implements ports.LockfileStore over a single binary file.
type Store struct{}

// New returns a ready-to-use Store.
func New() *Store {
	return &Store{}
}

// Load reads the lockfile at path. It returns (nil, nil) if the file does
// not exist. A format-version mismatch returns domain.ErrLockfileIncompatible
// rather than attempting to interpret stale bytes under the new layout.
func (s *Store) Load(path string) (*domain.Lockfile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read lockfile")
	}

	payload, err := verifyAndStrip(data)
	if err != nil {
		return nil, err
	}

	var l domain.Lockfile
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&l); err != nil {
		return nil, zerr.Wrap(err, "failed to decode lockfile")
	}

	if l.FormatVersion != domain.LockfileFormatVersion {
		return nil, zerr.With(domain.ErrLockfileIncompatible, "found_version", l.FormatVersion)
	}

	return &l, nil
}

// Save writes l to path atomically (write-to-temp then rename).
func (s *Store) Save(path string, l *domain.Lockfile) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(l); err != nil {
		return zerr.Wrap(err, "failed to encode lockfile")
	}

	data := frame(payload.Bytes())

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // lockfile is not sensitive
		return zerr.Wrap(err, "failed to write lockfile")
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.Wrap(err, "failed to finalize lockfile write")
	}
	return nil
}

// frame prepends the magic bytes and an xxhash checksum of payload, so a
// truncated or hand-edited file is rejected before gob ever sees it.
func frame(payload []byte) []byte {
	sum := xxhash.Sum64(payload)

	buf := make([]byte, 0, len(magic)+8+len(payload))
	buf = append(buf, magic...)
	buf = binary.LittleEndian.AppendUint64(buf, sum)
	buf = append(buf, payload...)
	return buf
}

func verifyAndStrip(data []byte) ([]byte, error) {
	if len(data) < len(magic)+8 {
		return nil, zerr.With(domain.ErrLockfileIncompatible, "reason", "file too short to be a lockfile")
	}
	if string(data[:len(magic)]) != magic {
		return nil, zerr.With(domain.ErrLockfileIncompatible, "reason", "missing lockfile magic")
	}

	want := binary.LittleEndian.Uint64(data[len(magic) : len(magic)+8])
	payload := data[len(magic)+8:]
	got := xxhash.Sum64(payload)
	if got != want {
		return nil, zerr.With(domain.ErrLockfileIncompatible, "reason", "checksum mismatch")
	}

	return payload, nil
}
