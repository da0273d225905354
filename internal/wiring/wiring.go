// Package wiring exists solely to pull every adapter, engine, and app
// package's init-time Graft registration into the final binary. cmd/rv
// blank-imports this package so main.go never has to list each node.go's
// package explicitly.
package wiring

import (
	_ "go.rv.dev/rv/internal/adapters/diskcache"
	_ "go.rv.dev/rv/internal/adapters/hasher"
	_ "go.rv.dev/rv/internal/adapters/installrunner"
	_ "go.rv.dev/rv/internal/adapters/library"
	_ "go.rv.dev/rv/internal/adapters/lockfile"
	_ "go.rv.dev/rv/internal/adapters/logger"
	_ "go.rv.dev/rv/internal/adapters/manifest"
	_ "go.rv.dev/rv/internal/adapters/probe"
	_ "go.rv.dev/rv/internal/adapters/repofetch"
	_ "go.rv.dev/rv/internal/adapters/source"
	_ "go.rv.dev/rv/internal/adapters/sysdeps"
	_ "go.rv.dev/rv/internal/app"
	_ "go.rv.dev/rv/internal/engine/planner"
	_ "go.rv.dev/rv/internal/engine/resolver"
	_ "go.rv.dev/rv/internal/engine/sync"
)
