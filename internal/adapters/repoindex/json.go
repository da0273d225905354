package repoindex

import (
	"encoding/json"

	"go.rv.dev/rv/internal/core/domain"
)

// jsonEdge is one structured dependency array entry in the JSON index
// format, e.g. {"name": "generics", "requirement": ">= 0.1"}.
type jsonEdge struct {
	Name        string `json:"name"`
	Requirement string `json:"requirement"`
}

// jsonEntry is one (version, ...) row for a package in the JSON index
// format.
type jsonEntry struct {
	Version     string     `json:"version"`
	Path        string     `json:"path"`
	Digest      string     `json:"digest"`
	Depends     []jsonEdge `json:"depends"`
	Imports     []jsonEdge `json:"imports"`
	LinkingTo   []jsonEdge `json:"linking_to"`
	Suggests    []jsonEdge `json:"suggests"`
	Enhances    []jsonEdge `json:"enhances"`
}

// parseJSON parses a JSON object mapping package name to an array of
// entries, per §4.3(b).
func parseJSON(data []byte, repoURL string, isBinary bool) (map[domain.PackageName]domain.PackageEntries, error) {
	var raw map[string][]jsonEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	packages := make(map[domain.PackageName]domain.PackageEntries)
	for name, entries := range raw {
		for _, e := range entries {
			version, err := domain.ParseVersion(e.Version)
			if err != nil {
				return nil, err
			}

			var edges []domain.Edge
			edges = append(edges, toEdges(e.Depends, domain.DependencyHard)...)
			edges = append(edges, toEdges(e.Imports, domain.DependencySoft)...)
			edges = append(edges, toEdges(e.LinkingTo, domain.DependencyLinking)...)
			edges = append(edges, toEdges(e.Suggests, domain.DependencySuggests)...)
			edges = append(edges, toEdges(e.Enhances, domain.DependencyEnhances)...)
			edges = domain.MergeEdges(edges)

			url := e.Path
			if url == "" {
				url = downloadURL(repoURL, name, e.Version, isBinary)
			}

			addEntry(packages, domain.NewInternedString(name), domain.IndexEntry{
				Version:     version,
				DownloadURL: url,
				Digest:      e.Digest,
				IsBinary:    isBinary,
				Edges:       edges,
			})
		}
	}

	return packages, nil
}

func toEdges(raw []jsonEdge, kind domain.DependencyKind) []domain.Edge {
	edges := make([]domain.Edge, 0, len(raw))
	for _, e := range raw {
		req, err := domain.ParseRequirement(e.Requirement)
		if err != nil {
			req = domain.AnyVersion()
		}
		edges = append(edges, domain.Edge{Name: domain.NewInternedString(e.Name), Requirement: req, Kind: kind})
	}
	return edges
}
