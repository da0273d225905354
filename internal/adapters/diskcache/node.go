package diskcache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the disk cache Graft node.
const NodeID graft.ID = "adapter.diskcache"

// EnvCacheDir overrides the cache root directory (§6); when unset the cache
// lives under the user's standard cache directory.
const EnvCacheDir = "RV_CACHE_DIR"

func init() {
	graft.Register(graft.Node[ports.DiskCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.DiskCache, error) {
			return New(resolveCacheRoot())
		},
	})
}

func resolveCacheRoot() string {
	if dir := os.Getenv(EnvCacheDir); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "rv")
}
