package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"go.trai.ch/zerr"
)

// ErrUnsupportedArchive is returned when an archive's compression format
// cannot be identified from its leading bytes.
var ErrUnsupportedArchive = zerr.New("unsupported archive compression")

// extractArchive decompresses and untars data into destDir, sniffing the
// compression format from its magic bytes the way a repository mirror's
// archives vary between gzip (the common case) and zstd (some binary
// repository families).
func extractArchive(data []byte, destDir string) error {
	reader, err := decompressReader(data)
	if err != nil {
		return err
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "read archive entry")
		}

		target := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return zerr.Wrap(err, "create archive directory")
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
				return zerr.Wrap(err, "create archive directory")
			}
			f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0o777)
			if err != nil {
				return zerr.Wrap(err, "write archive entry")
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return zerr.Wrap(err, "write archive entry")
			}
			if err := f.Close(); err != nil {
				return zerr.Wrap(err, "write archive entry")
			}
		}
	}
}

func decompressReader(data []byte) (io.Reader, error) {
	switch {
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, zerr.Wrap(err, "open gzip archive")
		}
		return gz, nil
	case len(data) >= 4 && data[0] == 0x28 && data[1] == 0xb5 && data[2] == 0x2f && data[3] == 0xfd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, zerr.Wrap(err, "open zstd archive")
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, ErrUnsupportedArchive
	}
}
