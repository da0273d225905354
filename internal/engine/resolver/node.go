package resolver

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/logger"
	"go.rv.dev/rv/internal/adapters/repofetch"
	"go.rv.dev/rv/internal/adapters/source"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{repofetch.NodeID, source.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Resolver, error) {
			fetcher, err := graft.Dep[ports.RepositoryFetcher](ctx)
			if err != nil {
				return nil, err
			}
			handlers, err := graft.Dep[map[domain.SourceKind]ports.SourceHandler](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(fetcher, handlers, log), nil
		},
	})
}
