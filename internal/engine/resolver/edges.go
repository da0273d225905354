package resolver

import "go.rv.dev/rv/internal/core/domain"

// enqueueEdges appends a work item for each edge of a just-resolved node
// that the resolver must follow: hard, linking, and soft edges always;
// suggests edges only when the resolving node (or, for a top-level
// dependency, its manifest entry) opted into install_suggestions; enhances
// edges never (§4.2). An edge the resolved node's descriptor pinned to a
// remote (res.remotes) carries that preference onto the new work item,
// subject to the prefer_repositories_for carve-out (§4.5 "Remotes").
func (r *Resolver) enqueueEdges(state *resolveState, res tierResult, item workItem) {
	installSuggestions := item.parentInstallSuggestions
	if item.top != nil {
		installSuggestions = item.top.InstallSuggestions
	}

	for _, edge := range res.edges {
		if !edge.Kind.Followed() {
			continue
		}
		if edge.Kind == domain.DependencySuggests && !installSuggestions {
			continue
		}

		next := workItem{
			name:                     edge.Name.String(),
			requirement:              edge.Requirement,
			kind:                     edge.Kind,
			parent:                   item.name,
			parentInstallSuggestions: installSuggestions,
		}

		if remote, ok := matchRemote(res.remotes, edge.Name); ok && !remoteOverriddenByRepository(state, item, edge, remote) {
			remote := remote
			next.requirement = next.requirement.Intersect(remote.Requirement)
			next.remote = &remote
		}

		state.queue = append(state.queue, next)
	}
}

// matchRemote finds the Remote (if any) a node's descriptor declared for
// dependency name.
func matchRemote(remotes []domain.Remote, name domain.PackageName) (domain.Remote, bool) {
	for _, r := range remotes {
		if r.DependencyName == name {
			return r, true
		}
	}
	return domain.Remote{}, false
}

// remoteOverriddenByRepository applies the prefer_repositories_for
// carve-out: a remote is skipped in favor of the repository tier only when
// the edge being enqueued belongs to a top-level manifest dependency (the
// carve-out is not applied transitively, per the Open Question resolution),
// the dependency name is in prefer_repositories_for, the remote itself
// carries a version requirement, and some repository can satisfy the
// combined requirement.
func remoteOverriddenByRepository(state *resolveState, item workItem, edge domain.Edge, remote domain.Remote) bool {
	if item.top == nil {
		return false
	}
	if !state.manifest.PrefersRepository(edge.Name.String()) {
		return false
	}
	if remote.Requirement.IsEmpty() {
		return false
	}

	combined := edge.Requirement.Intersect(remote.Requirement)
	for _, repo := range state.manifest.Repositories {
		idx, ok := state.indexes[repo.Alias]
		if !ok {
			continue
		}
		if _, ok := idx.BestCandidate(edge.Name, combined, repo.ForceSource); ok {
			return true
		}
	}
	return false
}
