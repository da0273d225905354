package sync

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/diskcache"
	"go.rv.dev/rv/internal/adapters/hasher"
	"go.rv.dev/rv/internal/adapters/installrunner"
	"go.rv.dev/rv/internal/adapters/library"
	"go.rv.dev/rv/internal/adapters/logger"
	"go.rv.dev/rv/internal/adapters/probe"
	"go.rv.dev/rv/internal/adapters/source"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// NodeID is the unique identifier for the sync pool Graft node.
const NodeID graft.ID = "engine.sync"

// EnvNoCheckOpenFile disables the open-file safety probe before a removal
// (§6); some filesystems or sandboxes cannot enumerate open file handles.
const EnvNoCheckOpenFile = "RV_NO_CHECK_OPEN_FILE"

func init() {
	graft.Register(graft.Node[*Pool]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{source.NodeID, installrunner.NodeID, library.NodeID, probe.OpenFileNodeID, logger.NodeID, hasher.NodeID, diskcache.NodeID},
		Run: func(ctx context.Context) (*Pool, error) {
			handlers, err := graft.Dep[map[domain.SourceKind]ports.SourceHandler](ctx)
			if err != nil {
				return nil, err
			}
			runner, err := graft.Dep[ports.InstallRunner](ctx)
			if err != nil {
				return nil, err
			}
			lib, err := graft.Dep[ports.LibraryStore](ctx)
			if err != nil {
				return nil, err
			}
			openFileProbe, err := graft.Dep[ports.OpenFileProbe](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			h, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.DiskCache](ctx)
			if err != nil {
				return nil, err
			}

			if noCheckOpenFile() {
				openFileProbe = nil
			}

			return New(handlers, runner, lib, openFileProbe, log, h, cache), nil
		},
	})
}

func noCheckOpenFile() bool {
	switch os.Getenv(EnvNoCheckOpenFile) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
