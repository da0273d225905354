package library

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the library store Graft node.
const NodeID graft.ID = "adapter.library"

func init() {
	graft.Register(graft.Node[ports.LibraryStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LibraryStore, error) {
			return New(), nil
		},
	})
}
