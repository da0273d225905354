package source

import (
	"context"
	"os"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// LocalHandler implements ports.SourceHandler for domain.SourceLocal:
// packages developed in-place on disk, never fetched or cached.
type LocalHandler struct{}

// NewLocalHandler builds a LocalHandler.
func NewLocalHandler() *LocalHandler {
	return &LocalHandler{}
}

// Kind reports domain.SourceLocal.
func (h *LocalHandler) Kind() domain.SourceKind { return domain.SourceLocal }

// DescribeOnly reads the DESCRIPTION-style metadata directly from the local
// path; there is nothing to fetch.
func (h *LocalHandler) DescribeOnly(ctx context.Context, node domain.ResolvedNode) (domain.PackageDescriptor, error) {
	if node.Local == nil {
		return domain.PackageDescriptor{}, zerr.With(domain.ErrDescriptorInvalidKind, "reason", "missing local source info")
	}
	return readDescription(node.Local.Path)
}

// Stage copies the local tree into a fresh staging directory, isolating the
// in-place working copy from the install runner's output so a failed build
// never touches the developer's own files.
func (h *LocalHandler) Stage(ctx context.Context, node domain.ResolvedNode) (ports.StagedSource, error) {
	if node.Local == nil {
		return ports.StagedSource{}, zerr.With(domain.ErrDescriptorInvalidKind, "reason", "missing local source info")
	}

	dest, err := os.MkdirTemp("", "rv-local-stage-*")
	if err != nil {
		return ports.StagedSource{}, zerr.Wrap(err, "create staging directory")
	}
	if err := copyTree(node.Local.Path, dest); err != nil {
		return ports.StagedSource{}, err
	}

	return ports.StagedSource{Path: dest}, nil
}
