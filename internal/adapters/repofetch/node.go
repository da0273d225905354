package repofetch

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/diskcache"
	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the repository fetcher Graft node.
const NodeID graft.ID = "adapter.repofetch"

func init() {
	graft.Register(graft.Node[ports.RepositoryFetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{diskcache.NodeID},
		Run: func(ctx context.Context) (ports.RepositoryFetcher, error) {
			cache, err := graft.Dep[ports.DiskCache](ctx)
			if err != nil {
				return nil, err
			}
			return New(Options{CacheRoot: cache.Root()}), nil
		},
	})
}
