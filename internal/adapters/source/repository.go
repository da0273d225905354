package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/adapters/descriptor"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// DiskCache is the subset of ports.DiskCache the repository and URL handlers
// use to avoid re-downloading an archive whose digest is already cached.
type DiskCache interface {
	Root() string
	HasArchive(digest string) bool
	WriteArchive(digest string, data []byte) (string, error)
	ArchivePath(digest string) string
}

// RepositoryHandler implements ports.SourceHandler for domain.SourceRepository:
// it downloads a package's archive from its index-resolved download URL,
// verifies the digest when known, and extracts it into a staging tree.
type RepositoryHandler struct {
	client *http.Client
	cache  DiskCache
}

// NewRepositoryHandler builds a RepositoryHandler.
func NewRepositoryHandler(client *http.Client, cache DiskCache) *RepositoryHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &RepositoryHandler{client: client, cache: cache}
}

// Kind reports domain.SourceRepository.
func (h *RepositoryHandler) Kind() domain.SourceKind { return domain.SourceRepository }

// DescribeOnly stages the archive and reads its DESCRIPTION metadata. A
// repository index entry already carries the dependency edges the resolver
// needs (parsed at index-fetch time), so in practice the resolver never
// calls this for repository-tier nodes; it exists to satisfy the interface
// uniformly and to support callers (e.g. a future `rv info`) that want a
// package's full metadata before installing it.
func (h *RepositoryHandler) DescribeOnly(ctx context.Context, node domain.ResolvedNode) (domain.PackageDescriptor, error) {
	staged, err := h.Stage(ctx, node)
	if err != nil {
		return domain.PackageDescriptor{}, err
	}
	return readDescription(staged.Path)
}

// Stage downloads (or reuses a cached copy of) the archive named by
// node.Repository.DownloadURL, verifies it against node.Digest when set,
// and extracts it into a fresh staging directory.
func (h *RepositoryHandler) Stage(ctx context.Context, node domain.ResolvedNode) (ports.StagedSource, error) {
	if node.Repository == nil {
		return ports.StagedSource{}, zerr.With(domain.ErrDescriptorInvalidKind, "reason", "missing repository source info")
	}

	data, digest, err := h.fetchArchive(ctx, node.Repository.DownloadURL, node.Digest)
	if err != nil {
		return ports.StagedSource{}, err
	}

	dest, err := os.MkdirTemp(h.cache.Root(), "stage-*")
	if err != nil {
		return ports.StagedSource{}, zerr.Wrap(err, "create staging directory")
	}
	if err := extractArchive(data, dest); err != nil {
		return ports.StagedSource{}, err
	}

	return ports.StagedSource{Path: dest, Digest: digest, IsBinary: node.Repository.IsBinary}, nil
}

// fetchArchive returns the archive's bytes, caching and verifying by
// content digest.
func (h *RepositoryHandler) fetchArchive(ctx context.Context, url, expectedDigest string) ([]byte, string, error) {
	if expectedDigest != "" && h.cache.HasArchive(expectedDigest) {
		data, err := os.ReadFile(h.cache.ArchivePath(expectedDigest))
		if err == nil {
			return data, expectedDigest, nil
		}
		// Cache entry vanished or was corrupted between check and read: fall
		// through to a fresh download.
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", zerr.Wrap(err, "build archive request")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", zerr.Wrap(err, "download archive")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", zerr.With(domain.ErrRepositoryFetchFailed, "status", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", zerr.Wrap(err, "read archive body")
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if expectedDigest != "" && digest != expectedDigest {
		return nil, "", zerr.With(zerr.With(domain.ErrArchiveDigestMismatch, "expected", expectedDigest), "actual", digest)
	}

	if _, err := h.cache.WriteArchive(digest, data); err != nil {
		return nil, "", zerr.Wrap(err, "cache archive")
	}

	return data, digest, nil
}

// readDescription reads and parses the DESCRIPTION-style metadata file at
// the root of a staged package tree.
func readDescription(stagedPath string) (domain.PackageDescriptor, error) {
	data, err := os.ReadFile(filepath.Join(stagedPath, "DESCRIPTION"))
	if err != nil {
		return domain.PackageDescriptor{}, zerr.Wrap(domain.ErrDescriptorInvalidKind, err.Error())
	}
	return descriptor.Parse(data)
}
