// Package resolver implements the breadth-first, multi-source constraint
// solver: starting from user-declared dependencies, it walks the transitive
// closure across heterogeneous sources, enforces version requirements,
// chooses at most one concrete source per package name, and emits a totally
// ordered Resolution.
package resolver

import (
	"context"
	"sort"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Diagnostic records which tier supplied one resolved node, surfaced to
// plan/tree callers (§4.5's "diagnostic trail").
type Diagnostic struct {
	Name domain.PackageName
	Tier domain.Tier
}

// Options configures one resolver run.
type Options struct {
	EngineVersion string
	Architecture  string

	// FullUpgrade disables the lockfile tier (§4.5 tier 3).
	FullUpgrade bool
}

// Resolver resolves a manifest's dependencies into a Resolution.
type Resolver struct {
	fetcher  ports.RepositoryFetcher
	handlers map[domain.SourceKind]ports.SourceHandler
	logger   ports.Logger
}

// New builds a Resolver from its collaborators. handlers must have an entry
// for every domain.SourceKind the manifest or a descriptor's remotes might
// name (repository, git, local, url).
func New(fetcher ports.RepositoryFetcher, handlers map[domain.SourceKind]ports.SourceHandler, logger ports.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, handlers: handlers, logger: logger}
}

// workItem is one unit of the resolver's BFS queue.
type workItem struct {
	name        string
	requirement domain.VersionRequirement
	kind        domain.DependencyKind
	parent      string

	// top is set for manifest-declared top-level dependencies; it carries
	// the per-dependency options and preferred source.
	top *domain.DependencySpec

	// remote is set when the parent node's descriptor pinned this edge to a
	// git fork via its Remotes field (§4.5 "Remotes") and the
	// prefer_repositories_for carve-out did not override it; resolveTiers
	// then follows it directly instead of walking the normal tier order.
	remote *domain.Remote

	// parentInstallSuggestions is inherited from the parent node that enqueued
	// this item, so a suggests edge enqueued by a node with
	// install_suggestions=true is actually followed.
	parentInstallSuggestions bool
}

type resolveState struct {
	manifest *domain.Manifest
	lockfile *domain.Lockfile
	builtins *domain.BuiltinSet
	opts     Options
	indexes  map[string]*domain.RepositoryIndex // by repository alias
	fetchErr map[string]error

	resolved   map[string]domain.ResolvedNode
	accumReq   map[string]domain.VersionRequirement
	diagnostic map[string]domain.Tier

	queue []workItem
}

// Resolve runs the breadth-first multi-tier resolution described in §4.5 and
// returns the resulting Resolution plus a diagnostic trail of which tier
// supplied each node.
func (r *Resolver) Resolve(ctx context.Context, manifest *domain.Manifest, lockfile *domain.Lockfile, builtins *domain.BuiltinSet, opts Options) (*domain.Resolution, []Diagnostic, error) {
	indexes, fetchErr := r.fetchIndexes(ctx, manifest, opts)

	state := &resolveState{
		manifest:   manifest,
		lockfile:   lockfile,
		builtins:   builtins,
		opts:       opts,
		indexes:    indexes,
		fetchErr:   fetchErr,
		resolved:   make(map[string]domain.ResolvedNode),
		accumReq:   make(map[string]domain.VersionRequirement),
		diagnostic: make(map[string]domain.Tier),
	}

	for _, dep := range manifest.Dependencies {
		dep := dep
		req := dep.Requirement
		state.queue = append(state.queue, workItem{
			name:        dep.Name,
			requirement: req,
			kind:        domain.DependencyHard,
			top:         &dep,
		})
	}

	for len(state.queue) > 0 {
		item := state.queue[0]
		state.queue = state.queue[1:]

		if err := r.processItem(ctx, state, item); err != nil {
			return nil, nil, err
		}
	}

	return r.finalize(state)
}

// fetchIndexes fetches every manifest repository's index in parallel. A
// single repository's failure does not fail the others (§4.3); fetch errors
// are surfaced only if the resolver later actually needs that repository.
func (r *Resolver) fetchIndexes(ctx context.Context, manifest *domain.Manifest, opts Options) (map[string]*domain.RepositoryIndex, map[string]error) {
	indexes := make(map[string]*domain.RepositoryIndex, len(manifest.Repositories))
	fetchErrs := make(map[string]error, len(manifest.Repositories))

	if r.fetcher == nil || len(manifest.Repositories) == 0 {
		return indexes, fetchErrs
	}

	type result struct {
		alias string
		idx   *domain.RepositoryIndex
		err   error
	}

	results := make(chan result, len(manifest.Repositories))
	g, gctx := errgroup.WithContext(ctx)

	for _, repo := range manifest.Repositories {
		repo := repo
		g.Go(func() error {
			idx, err := r.fetcher.FetchIndex(gctx, repo, opts.EngineVersion, opts.Architecture)
			results <- result{alias: repo.Alias, idx: idx, err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			fetchErrs[res.alias] = res.err
			continue
		}
		indexes[res.alias] = res.idx
	}

	return indexes, fetchErrs
}

// processItem resolves one dequeued work item against the fixed tier
// priority and enqueues its dependency edges on success.
func (r *Resolver) processItem(ctx context.Context, state *resolveState, item workItem) error {
	name := item.name

	if existing, ok := state.resolved[name]; ok {
		return r.reconcile(state, item, existing)
	}

	res, err := r.resolveTiers(ctx, state, item)
	if err != nil {
		return err
	}

	state.resolved[name] = res.node
	state.accumReq[name] = item.requirement
	state.diagnostic[name] = res.tier

	r.enqueueEdges(state, res, item)
	return nil
}

// reconcile handles a second work item arriving for an already-resolved
// name: a top-level item that names an explicit source (git/url/local)
// different from the one already resolved is a SourceConflict (§8 S4) —
// BFS processes the manifest's dependency list in declared order with no
// backtracking, so whichever declaration was enqueued first owns the name.
// Otherwise, intersect requirements and check the merged clauses are still
// satisfied by the version already chosen (§8 S5).
func (r *Resolver) reconcile(state *resolveState, item workItem, existing domain.ResolvedNode) error {
	if item.top != nil {
		switch item.top.Source {
		case domain.SourceGit, domain.SourceURL, domain.SourceLocal:
			if item.top.Source != existing.Source {
				return zerr.With(
					zerr.With(domain.ErrSourceConflict, "package", item.name),
					"existing_source", existing.Source.String(),
				)
			}
		}
	}

	merged := state.accumReq[item.name].Intersect(item.requirement)
	state.accumReq[item.name] = merged

	if !merged.Satisfies(existing.Version) {
		return zerr.With(
			zerr.With(domain.ErrVersionConflict, "package", item.name),
			"parent", item.parent,
		)
	}

	return nil
}

// finalize builds the Resolution, detecting cycles over hard/linking edges
// and producing a topological order with cycle members grouped adjacently
// in name order (§9).
func (r *Resolver) finalize(state *resolveState) (*domain.Resolution, []Diagnostic, error) {
	nodes := make(map[domain.PackageName]domain.ResolvedNode, len(state.resolved))
	for name, node := range state.resolved {
		nodes[domain.NewInternedString(name)] = node
	}

	order, cycles := topoOrderWithCycles(nodes)

	res, err := domain.NewResolution(nodes, order, cycles)
	if err != nil {
		return nil, nil, err
	}

	diags := make([]Diagnostic, 0, len(state.diagnostic))
	names := make([]string, 0, len(state.diagnostic))
	for name := range state.diagnostic {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		diags = append(diags, Diagnostic{Name: domain.NewInternedString(name), Tier: state.diagnostic[name]})
	}

	return res, diags, nil
}
