package probe

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/core/ports"
)

// EngineNodeID is the unique identifier for the engine probe Graft node.
const EngineNodeID graft.ID = "adapter.probe.engine"

// OpenFileNodeID is the unique identifier for the open-file probe Graft node.
const OpenFileNodeID graft.ID = "adapter.probe.openfile"

func init() {
	graft.Register(graft.Node[ports.EngineProbe]{
		ID:        EngineNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EngineProbe, error) {
			return NewEngineProbe(), nil
		},
	})

	graft.Register(graft.Node[ports.OpenFileProbe]{
		ID:        OpenFileNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OpenFileProbe, error) {
			return NewOpenFileProbe(), nil
		},
	})
}
