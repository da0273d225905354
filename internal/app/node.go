package app

import (
	"context"

	"github.com/grindlemire/graft"

	"go.rv.dev/rv/internal/adapters/diskcache"
	"go.rv.dev/rv/internal/adapters/library"
	"go.rv.dev/rv/internal/adapters/lockfile"
	"go.rv.dev/rv/internal/adapters/logger"
	"go.rv.dev/rv/internal/adapters/manifest"
	"go.rv.dev/rv/internal/adapters/probe"
	"go.rv.dev/rv/internal/adapters/source"
	"go.rv.dev/rv/internal/adapters/sysdeps"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
	"go.rv.dev/rv/internal/engine/planner"
	"go.rv.dev/rv/internal/engine/resolver"
	syncengine "go.rv.dev/rv/internal/engine/sync"
)

// AppNodeID is the unique identifier for the App Graft node.
const AppNodeID graft.ID = "app.app"

// ComponentsNodeID is the unique identifier for the Components Graft node
// cmd/rv resolves the whole dependency graph through.
const ComponentsNodeID graft.ID = "app.components"

// Components bundles everything cmd/rv needs once the dependency graph has
// resolved, mirroring the teacher's own top-level entry-point shape.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID, lockfile.NodeID, resolver.NodeID, planner.NodeID,
			syncengine.NodeID, library.NodeID, diskcache.NodeID,
			probe.EngineNodeID, sysdeps.NodeID, source.NodeID, logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			manifestLoader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}
			lockfileStore, err := graft.Dep[ports.LockfileStore](ctx)
			if err != nil {
				return nil, err
			}
			res, err := graft.Dep[*resolver.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			pln, err := graft.Dep[*planner.Planner](ctx)
			if err != nil {
				return nil, err
			}
			pool, err := graft.Dep[*syncengine.Pool](ctx)
			if err != nil {
				return nil, err
			}
			lib, err := graft.Dep[ports.LibraryStore](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.DiskCache](ctx)
			if err != nil {
				return nil, err
			}
			engineProbe, err := graft.Dep[ports.EngineProbe](ctx)
			if err != nil {
				return nil, err
			}
			sysdepLookup, err := graft.Dep[ports.SysDepLookup](ctx)
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

			return New(manifestLoader, lockfileStore, res, pln, pool, lib, cache, engineProbe, sysdepLookup, handlers, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}
