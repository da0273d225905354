package ports

import (
	"context"

	"go.rv.dev/rv/internal/core/domain"
)

// StagedSource is the result of fully fetching a package's source: a
// filesystem tree ready for the install runner, plus the archive digest
// when the source kind produces one.
type StagedSource struct {
	Path     string
	Digest   string
	IsBinary bool
}

// SourceHandler fetches and stages a package from one source kind
// (repository, git, local, or URL). The resolver calls DescribeOnly to read
// a package's descriptor (dependency edges, remotes) without a full
// download; the sync worker pool calls Stage to materialize the full
// archive or checkout for installation.
//
//go:generate mockgen -source=source_handler.go -destination=mocks/mock_source_handler.go -package=mocks
type SourceHandler interface {
	// Kind reports which domain.SourceKind this handler serves.
	Kind() domain.SourceKind

	// DescribeOnly fetches just enough of the source to parse its package
	// descriptor (e.g. a repository index row, or a shallow git checkout's
	// metadata file), without downloading the full archive.
	DescribeOnly(ctx context.Context, node domain.ResolvedNode) (domain.PackageDescriptor, error)

	// Stage fully fetches and verifies the source, returning a staged
	// filesystem tree. Archive-based sources verify the downloaded bytes
	// against node.Digest when it is set; a mismatch returns
	// domain.ErrArchiveDigestMismatch and is not retried.
	Stage(ctx context.Context, node domain.ResolvedNode) (StagedSource, error)
}
