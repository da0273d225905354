package lockfile

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the lockfile store Graft node.
const NodeID graft.ID = "adapter.lockfile"

func init() {
	graft.Register(graft.Node[ports.LockfileStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockfileStore, error) {
			return New(), nil
		},
	})
}
