// Package descriptor parses one package's own metadata paragraph — a
// DESCRIPTION-style "field: value" block, the single-paragraph case of the
// same DCF grammar the repository index's primary format uses — into
// domain.PackageDescriptor.
package descriptor

import (
	"strings"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

// ErrDescriptionInvalid is returned when a DESCRIPTION-style paragraph lacks
// a Package or Version field, or names an unparseable version.
var ErrDescriptionInvalid = zerr.New("package description could not be parsed")

// Parse parses one package's metadata paragraph into a PackageDescriptor.
func Parse(data []byte) (domain.PackageDescriptor, error) {
	fields := parseFields(string(data))

	name := fields["Package"]
	if name == "" {
		return domain.PackageDescriptor{}, zerr.With(ErrDescriptionInvalid, "field", "Package")
	}

	version, err := domain.ParseVersion(fields["Version"])
	if err != nil {
		return domain.PackageDescriptor{}, zerr.Wrap(ErrDescriptionInvalid, err.Error())
	}

	var edges []domain.Edge
	edges = append(edges, parseDepField(fields["Depends"], domain.DependencyHard)...)
	edges = append(edges, parseDepField(fields["Imports"], domain.DependencySoft)...)
	edges = append(edges, parseDepField(fields["LinkingTo"], domain.DependencyLinking)...)
	edges = append(edges, parseDepField(fields["Suggests"], domain.DependencySuggests)...)
	edges = append(edges, parseDepField(fields["Enhances"], domain.DependencyEnhances)...)
	edges = domain.MergeEdges(edges)

	var hints []string
	if raw := fields["SystemRequirements"]; raw != "" {
		for _, h := range strings.Split(raw, ",") {
			h = strings.TrimSpace(h)
			if h != "" {
				hints = append(hints, h)
			}
		}
	}

	remotes := parseRemotes(fields["Remotes"])

	desc := domain.PackageDescriptor{
		Name:               domain.NewInternedString(name),
		Version:            version,
		Edges:              edges,
		SystemLibraryHints: hints,
		Remotes:            remotes,
		IsBinary:           fields["Built"] != "",
	}
	if err := desc.Validate(); err != nil {
		return domain.PackageDescriptor{}, err
	}
	return desc, nil
}

// parseRemotes parses the "Remotes" field's comma-separated
// "owner/repo[@ref][:subdir]" shorthand into explicit git remotes, following
// the same override convention the original package-description format
// uses to pin a dependency to a fork or branch outside the repository tier.
func parseRemotes(field string) []domain.Remote {
	if field == "" {
		return nil
	}

	var remotes []domain.Remote
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		subdir := ""
		if idx := strings.IndexByte(part, ':'); idx >= 0 {
			subdir = part[idx+1:]
			part = part[:idx]
		}

		ref := domain.GitRef{Kind: domain.GitRefBranch, Value: "HEAD"}
		if idx := strings.IndexByte(part, '@'); idx >= 0 {
			ref = domain.GitRef{Kind: domain.GitRefCommit, Value: part[idx+1:]}
			part = part[:idx]
		}

		segments := strings.Split(part, "/")
		name := segments[len(segments)-1]

		remotes = append(remotes, domain.Remote{
			DependencyName: domain.NewInternedString(name),
			GitURL:         "https://github.com/" + part,
			Ref:            ref,
			Subdirectory:   subdir,
		})
	}
	return remotes
}

func parseFields(para string) map[string]string {
	fields := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(para, "\r\n", "\n"), "\n")

	var lastKey string
	for _, line := range lines {
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && lastKey != "" {
			fields[lastKey] = strings.TrimSpace(fields[lastKey] + " " + strings.TrimSpace(line))
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		fields[key] = value
		lastKey = key
	}
	return fields
}

func parseDepField(field string, kind domain.DependencyKind) []domain.Edge {
	if field == "" {
		return nil
	}

	var edges []domain.Edge
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name := part
		clause := ""
		if open := strings.IndexByte(part, '('); open >= 0 {
			if close := strings.IndexByte(part, ')'); close > open {
				clause = strings.TrimSpace(part[open+1 : close])
			}
			name = strings.TrimSpace(part[:open])
		}

		if name == "R" || name == "" {
			continue
		}

		req, err := domain.ParseRequirement(clause)
		if err != nil {
			req = domain.AnyVersion()
		}

		edges = append(edges, domain.Edge{Name: domain.NewInternedString(name), Requirement: req, Kind: kind})
	}
	return edges
}
