package resolver

import (
	"sort"

	"go.rv.dev/rv/internal/core/domain"
)

// topoOrderWithCycles runs Kahn's algorithm over the resolved dependency
// graph. Nodes left over once no more zero-in-degree nodes remain are
// exactly the members of one or more cycles; those are grouped into weakly
// connected components, each sorted and appended to the order as one
// name-ordered batch (§4.6, §9).
func topoOrderWithCycles(nodes map[domain.PackageName]domain.ResolvedNode) ([]domain.PackageName, [][]domain.PackageName) {
	inDegree := make(map[domain.PackageName]int, len(nodes))
	dependents := make(map[domain.PackageName][]domain.PackageName, len(nodes))

	for name := range nodes {
		inDegree[name] = 0
	}
	for name, node := range nodes {
		for _, dep := range node.Dependencies {
			if _, ok := nodes[dep]; !ok {
				continue
			}
			inDegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []domain.PackageName
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}

	var order []domain.PackageName
	for len(ready) > 0 {
		sortNames(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dep := range dependents[next] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) == len(nodes) {
		return order, nil
	}

	remaining := make(map[domain.PackageName]bool)
	for name, deg := range inDegree {
		if deg > 0 {
			remaining[name] = true
		}
	}

	groups := groupCycles(remaining, nodes)
	for _, g := range groups {
		order = append(order, g...)
	}

	return order, groups
}

// groupCycles partitions the leftover nodes into weakly connected
// components over the subgraph they induce, each returned sorted by name.
func groupCycles(remaining map[domain.PackageName]bool, nodes map[domain.PackageName]domain.ResolvedNode) [][]domain.PackageName {
	adjacency := make(map[domain.PackageName][]domain.PackageName)
	for name := range remaining {
		for _, dep := range nodes[name].Dependencies {
			if remaining[dep] {
				adjacency[name] = append(adjacency[name], dep)
				adjacency[dep] = append(adjacency[dep], name)
			}
		}
	}

	names := make([]domain.PackageName, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sortNames(names)

	visited := make(map[domain.PackageName]bool, len(remaining))
	var groups [][]domain.PackageName

	for _, start := range names {
		if visited[start] {
			continue
		}

		var component []domain.PackageName
		queue := []domain.PackageName{start}
		visited[start] = true

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)

			for _, n := range adjacency[cur] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		sortNames(component)
		groups = append(groups, component)
	}

	return groups
}

func sortNames(names []domain.PackageName) {
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
}
