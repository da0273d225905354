package resolver

import (
	"context"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
	"go.trai.ch/zerr"
)

// resolveTiers applies the fixed tier priority of §4.5. A top-level
// dependency that names an explicit source (path, git, url) bypasses the
// tier search for that source entirely; for a git or url source whose name
// is listed in prefer_repositories_for, the repository tier is tried first
// and the explicit source is the fallback. Everything else — bare
// repository-tier dependencies and every transitive edge not pinned by a
// Remote — walks Builtin, Lockfile, Repositories in order.
// tierResult carries a resolved node alongside the raw edges its source
// exposed, so enqueueEdges can apply each edge's own Kind and Requirement
// rather than just a bare list of names. remotes carries the node's own
// descriptor-level Remote overrides (§4.5 "Remotes"), consulted when
// enqueueing that node's edges.
type tierResult struct {
	node    domain.ResolvedNode
	tier    domain.Tier
	edges   []domain.Edge
	remotes []domain.Remote
}

func (r *Resolver) resolveTiers(ctx context.Context, state *resolveState, item workItem) (tierResult, error) {
	if item.top != nil {
		switch item.top.Source {
		case domain.SourceLocal:
			node := domain.ResolvedNode{
				Name:        domain.NewInternedString(item.name),
				Source:      domain.SourceLocal,
				Tier:        domain.TierLocal,
				Local:       &domain.LocalSourceInfo{Path: item.top.Path},
				ForceSource: item.top.ForceSource,
			}
			applyDependencyOptions(&node, item)
			return r.describeLocal(ctx, node)

		case domain.SourceGit, domain.SourceURL:
			if state.manifest.PrefersRepository(item.name) {
				if res, ok, err := r.resolveFromRepositories(state, item); err != nil {
					return tierResult{}, err
				} else if ok {
					return res, nil
				}
			}
			return r.resolveGitOrURL(ctx, item)
		}
	} else if item.remote != nil {
		// A transitive edge whose parent descriptor pinned it to a remote
		// (§4.5 "Remotes"); enqueueEdges has already applied the
		// prefer_repositories_for carve-out, so reaching here always means
		// the remote is followed.
		return r.resolveRemote(ctx, item)
	}

	if state.builtins != nil {
		if v, ok := state.builtins.Satisfies(domain.NewInternedString(item.name), item.requirement); ok {
			return tierResult{node: domain.ResolvedNode{
				Name:    domain.NewInternedString(item.name),
				Version: v,
				Source:  domain.SourceBuiltin,
				Tier:    domain.TierBuiltin,
			}, tier: domain.TierBuiltin}, nil
		}
	}

	if !state.opts.FullUpgrade && state.lockfile != nil {
		if res, ok := r.resolveFromLockfile(state, item); ok {
			return res, nil
		}
	}

	if res, ok, err := r.resolveFromRepositories(state, item); err != nil {
		return tierResult{}, err
	} else if ok {
		return res, nil
	}

	return tierResult{}, zerr.With(domain.ErrPackageNotFound, "package", item.name)
}

// describeLocal reads the local path's descriptor to discover its edges;
// the resolver never caches or verifies digests for a local source.
func (r *Resolver) describeLocal(ctx context.Context, node domain.ResolvedNode) (tierResult, error) {
	handler, ok := r.handlers[domain.SourceLocal]
	if !ok {
		return tierResult{node: node, tier: domain.TierLocal}, nil
	}

	desc, err := handler.DescribeOnly(ctx, node)
	if err != nil {
		return tierResult{}, zerr.Wrap(err, "describe local source")
	}
	if err := desc.Validate(); err != nil {
		return tierResult{}, err
	}

	node.Version = desc.Version
	merged := domain.MergeEdges(desc.Edges)
	node.Dependencies = edgeNames(merged)

	return tierResult{node: node, tier: domain.TierLocal, edges: merged, remotes: desc.Remotes}, nil
}

// resolveFromLockfile honors a previously recorded choice, but only while
// its repository alias (if any) is still declared in the manifest at the
// same URL — otherwise it is a lockfile-tier miss (Open Question resolution
// in SPEC_FULL.md §9).
func (r *Resolver) resolveFromLockfile(state *resolveState, item workItem) (tierResult, bool) {
	entry, ok := state.lockfile.EntryByName(item.name)
	if !ok {
		return tierResult{}, false
	}

	node, err := entry.ToResolvedNode()
	if err != nil {
		return tierResult{}, false
	}

	if !item.requirement.Satisfies(node.Version) {
		return tierResult{}, false
	}

	if node.Repository != nil {
		repo, ok := state.manifest.RepositoryByAlias(node.Repository.Alias)
		if !ok || repo.URL != node.Repository.URL {
			return tierResult{}, false
		}
	}

	// Lockfile entries do not retain per-edge requirement/kind metadata;
	// their dependency names are re-enqueued as unconstrained hard edges,
	// which is safe because the lockfile itself only exists once a prior
	// run already satisfied every constraint among these exact versions.
	edges := make([]domain.Edge, len(node.Dependencies))
	for i, dep := range node.Dependencies {
		edges[i] = domain.Edge{Name: dep, Requirement: domain.AnyVersion(), Kind: domain.DependencyHard}
	}

	return tierResult{node: node, tier: domain.TierLockfile, edges: edges}, true
}

// resolveFromRepositories walks the manifest's repositories in declared
// order and applies the earlier-repository-wins tie-break when two
// repositories offer the same highest version (the index-internal tie-break
// lives in RepositoryIndex.BestCandidate; this loop only needs to stop at
// the first repository that can satisfy the requirement at all).
func (r *Resolver) resolveFromRepositories(state *resolveState, item workItem) (tierResult, bool, error) {
	repos := state.manifest.Repositories
	if item.top != nil && item.top.RepositoryAlias != "" {
		repo, ok := state.manifest.RepositoryByAlias(item.top.RepositoryAlias)
		if !ok {
			return tierResult{}, false, zerr.With(domain.ErrPackageNotFound, "package", item.name)
		}
		repos = []domain.Repository{repo}
	}

	forceSource := item.top != nil && item.top.ForceSource
	name := domain.NewInternedString(item.name)

	for _, repo := range repos {
		idx, ok := state.indexes[repo.Alias]
		if !ok {
			if err, hasErr := state.fetchErr[repo.Alias]; hasErr {
				return tierResult{}, false, zerr.Wrap(err, "fetch repository index")
			}
			continue
		}

		entry, ok := idx.BestCandidate(name, item.requirement, forceSource || repo.ForceSource)
		if !ok {
			continue
		}

		merged := domain.MergeEdges(entry.Edges)
		node := domain.ResolvedNode{
			Name:    name,
			Version: entry.Version,
			Source:  domain.SourceRepository,
			Tier:    domain.TierRepository,
			Repository: &domain.RepositorySourceInfo{
				Alias:       repo.Alias,
				URL:         repo.URL,
				DownloadURL: entry.DownloadURL,
				IsBinary:    entry.IsBinary,
			},
			Digest:       entry.Digest,
			Dependencies: edgeNames(merged),
			ForceSource:  forceSource || repo.ForceSource,
		}
		applyDependencyOptions(&node, item)

		return tierResult{node: node, tier: domain.TierRepository, edges: merged}, true, nil
	}

	return tierResult{}, false, nil
}

// resolveGitOrURL resolves a top-level remote dependency declared directly
// in the manifest. The descriptor's own edges are fetched lazily by
// enqueueEdges via the appropriate SourceHandler.
func (r *Resolver) resolveGitOrURL(ctx context.Context, item workItem) (tierResult, error) {
	dep := item.top
	handler, ok := r.handlers[dep.Source]
	if !ok {
		return tierResult{}, zerr.With(domain.ErrPackageNotFound, "package", item.name)
	}

	node := domain.ResolvedNode{
		Name:        domain.NewInternedString(item.name),
		Source:      dep.Source,
		Tier:        domain.TierRemote,
		ForceSource: dep.ForceSource,
	}
	applyDependencyOptions(&node, item)

	switch dep.Source {
	case domain.SourceGit:
		node.Git = &domain.GitSourceInfo{URL: dep.GitURL, Ref: dep.GitRef, Subdirectory: dep.Directory}
	case domain.SourceURL:
		node.URL = &domain.URLSourceInfo{URL: dep.URL}
	}

	return r.describeRemoteNode(ctx, handler, node)
}

// resolveRemote resolves a transitive edge that a parent descriptor's
// Remotes field pinned to a git fork (§4.5 "Remotes"). Unlike
// resolveGitOrURL, the source is always git: the package-description
// "Remotes" shorthand this system parses only ever names a git location.
func (r *Resolver) resolveRemote(ctx context.Context, item workItem) (tierResult, error) {
	handler, ok := r.handlers[domain.SourceGit]
	if !ok {
		return tierResult{}, zerr.With(domain.ErrPackageNotFound, "package", item.name)
	}

	node := domain.ResolvedNode{
		Name:   domain.NewInternedString(item.name),
		Source: domain.SourceGit,
		Tier:   domain.TierRemote,
		Git: &domain.GitSourceInfo{
			URL:          item.remote.GitURL,
			Ref:          item.remote.Ref,
			Subdirectory: item.remote.Subdirectory,
		},
	}

	return r.describeRemoteNode(ctx, handler, node)
}

// describeRemoteNode fetches and validates node's descriptor against
// handler, filling in the name/version/edges a remote source only reveals
// once fetched.
func (r *Resolver) describeRemoteNode(ctx context.Context, handler ports.SourceHandler, node domain.ResolvedNode) (tierResult, error) {
	desc, err := handler.DescribeOnly(ctx, node)
	if err != nil {
		return tierResult{}, zerr.Wrap(err, "describe remote source")
	}
	if err := desc.Validate(); err != nil {
		return tierResult{}, err
	}

	node.Name = desc.Name
	node.Version = desc.Version
	merged := domain.MergeEdges(desc.Edges)
	node.Dependencies = edgeNames(merged)

	return tierResult{node: node, tier: domain.TierRemote, edges: merged, remotes: desc.Remotes}, nil
}

// applyDependencyOptions copies install_suggestions and dependencies_only
// from a top-level manifest dependency's options onto its resolved node.
// Both are meaningless for a transitive work item, which carries no
// DependencySpec of its own and so never contributes these flags itself
// (§4.5 "A node marked dependencies_only contributes its edges but is
// itself marked as not to be installed").
func applyDependencyOptions(node *domain.ResolvedNode, item workItem) {
	if item.top == nil {
		return
	}
	node.InstallSuggestions = item.top.InstallSuggestions
	node.DependenciesOnly = item.top.DependenciesOnly
}

func edgeNames(edges []domain.Edge) []domain.PackageName {
	names := make([]domain.PackageName, 0, len(edges))
	for _, e := range edges {
		names = append(names, e.Name)
	}
	return names
}
