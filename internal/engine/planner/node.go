package planner

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/hasher"
	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the planner Graft node.
const NodeID graft.ID = "engine.planner"

func init() {
	graft.Register(graft.Node[*Planner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{hasher.NodeID},
		Run: func(ctx context.Context) (*Planner, error) {
			h, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return New(h), nil
		},
	})
}
