// Package planner turns a Resolution and the currently installed Library
// into an ordered Plan: which packages to install, keep, or remove, with
// installs following the Resolution's topological order and hard/linking
// cycles grouped into a single named-order batch (§4.6).
package planner

import (
	"context"
	"sort"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// Options configures one planning pass.
type Options struct {
	LibraryRoot     string
	LibraryOverride string
	EngineVersion   string
	Architecture    string
}

// Planner computes a Plan by diffing a Resolution against an installed
// Library, consulting a Hasher to detect drift in packages that otherwise
// look unchanged.
type Planner struct {
	hasher ports.Hasher
}

// New builds a Planner from its collaborators.
func New(hasher ports.Hasher) *Planner {
	return &Planner{hasher: hasher}
}

// Plan computes the actions needed to bring library in line with
// resolution.
func (p *Planner) Plan(ctx context.Context, resolution *domain.Resolution, library *domain.Library, opts Options) (*domain.Plan, error) {
	cycleGroup := make(map[domain.PackageName][]domain.PackageName)
	for _, group := range resolution.Cycles() {
		for _, name := range group {
			cycleGroup[name] = group
		}
	}

	var actions []domain.Action
	for node := range resolution.All() {
		if err := ctx.Err(); err != nil {
			return nil, domain.ErrCancelled
		}

		action, err := p.planOne(ctx, node, library, opts, cycleGroup[node.Name])
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	actions = append(actions, p.planRemovals(resolution, library)...)

	return &domain.Plan{Actions: actions}, nil
}

// planOne decides whether one resolved node needs installing or is already
// satisfied by the installed library.
func (p *Planner) planOne(ctx context.Context, node domain.ResolvedNode, library *domain.Library, opts Options, group []domain.PackageName) (domain.Action, error) {
	entry, installed := library.Entry(node.Name)
	if installed && p.unchanged(ctx, node, entry, opts) {
		return domain.Action{Kind: domain.ActionKeep, Name: node.Name, Node: node}, nil
	}

	if node.DependenciesOnly {
		return domain.Action{Kind: domain.ActionDependenciesOnly, Name: node.Name, Node: node}, nil
	}

	return domain.Action{Kind: domain.ActionInstall, Name: node.Name, Node: node, CycleGroup: group}, nil
}

// unchanged reports whether an installed entry already matches a resolved
// node closely enough to skip reinstalling it: same version and source, and
// (for a fingerprint-bearing entry) a tree fingerprint that still matches
// what was recorded at install time — the "change-detecting" half of the
// planner's job (§4.6).
func (p *Planner) unchanged(ctx context.Context, node domain.ResolvedNode, entry domain.LibraryEntry, opts Options) bool {
	if !node.Version.Equal(entry.Version) || node.Source != entry.Source {
		return false
	}

	if p.hasher == nil || entry.Fingerprint == "" {
		return true
	}

	path := domain.LibraryPackagePath(opts.LibraryRoot, opts.LibraryOverride, opts.EngineVersion, opts.Architecture, node.Name.String())
	fp, err := p.hasher.FingerprintTree(path)
	if err != nil {
		// An unreadable install directory is itself a reason to reinstall
		// rather than fail planning outright.
		return false
	}

	return fp == entry.Fingerprint
}

// planRemovals finds installed names absent from the resolution and emits a
// name-ordered ActionRemove for each.
func (p *Planner) planRemovals(resolution *domain.Resolution, library *domain.Library) []domain.Action {
	names := library.Names()
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })

	var actions []domain.Action
	for _, name := range names {
		if _, ok := resolution.Node(name); ok {
			continue
		}
		actions = append(actions, domain.Action{Kind: domain.ActionRemove, Name: name})
	}
	return actions
}
