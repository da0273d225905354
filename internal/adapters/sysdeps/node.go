package sysdeps

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the sysdeps lookup Graft node.
const NodeID graft.ID = "adapter.sysdeps"

func init() {
	graft.Register(graft.Node[ports.SysDepLookup]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SysDepLookup, error) {
			return New(), nil
		},
	})
}
