package repoindex

import (
	"strings"

	"go.rv.dev/rv/internal/core/domain"
)

// parseDCF parses a concatenation of "Key: value" paragraphs separated by
// blank lines, one paragraph per (package, version), per §4.3(a). A
// continuation line (indented with leading whitespace) extends the value of
// the preceding key, the way a CRAN PACKAGES file wraps long Depends lines.
func parseDCF(data string, repoURL string, isBinary bool) (map[domain.PackageName]domain.PackageEntries, error) {
	packages := make(map[domain.PackageName]domain.PackageEntries)

	for _, para := range splitParagraphs(data) {
		fields := parseFields(para)

		name := fields["Package"]
		if name == "" {
			continue // a stray blank paragraph, not a package record
		}
		versionStr := fields["Version"]
		version, err := domain.ParseVersion(versionStr)
		if err != nil {
			return nil, err
		}

		var edges []domain.Edge
		edges = append(edges, parseDepField(fields["Depends"], domain.DependencyHard)...)
		edges = append(edges, parseDepField(fields["Imports"], domain.DependencySoft)...)
		edges = append(edges, parseDepField(fields["LinkingTo"], domain.DependencyLinking)...)
		edges = append(edges, parseDepField(fields["Suggests"], domain.DependencySuggests)...)
		edges = append(edges, parseDepField(fields["Enhances"], domain.DependencyEnhances)...)
		edges = domain.MergeEdges(edges)

		digest := fields["SHA256sum"]
		if digest == "" {
			digest = fields["MD5sum"]
		}

		path := fields["Path"]
		url := downloadURL(repoURL, name, versionStr, isBinary)
		if path != "" {
			url = strings.TrimRight(repoURL, "/") + "/" + strings.Trim(path, "/") + "/" + name + "_" + versionStr + filenameExt(isBinary)
		}

		addEntry(packages, domain.NewInternedString(name), domain.IndexEntry{
			Version:     version,
			DownloadURL: url,
			Digest:      digest,
			IsBinary:    isBinary,
			Edges:       edges,
		})
	}

	return packages, nil
}

func filenameExt(isBinary bool) string {
	if isBinary {
		return ".tgz"
	}
	return ".tar.gz"
}

// splitParagraphs splits DCF text on blank lines.
func splitParagraphs(data string) []string {
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")

	var paras []string
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				paras = append(paras, strings.Join(current, "\n"))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		paras = append(paras, strings.Join(current, "\n"))
	}
	return paras
}

// parseFields parses one paragraph's "Key: value" lines, folding indented
// continuation lines into the previous key's value.
func parseFields(para string) map[string]string {
	fields := make(map[string]string)
	lines := strings.Split(para, "\n")

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

// parseDepField parses a comma-separated "name (op version)" list (R's
// DESCRIPTION dependency field grammar) into edges of the given kind. A bare
// name with no parenthesized clause is treated as requiring any version.
// "R" itself is skipped: it names the engine, not a package.
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
			close := strings.IndexByte(part, ')')
			if close > open {
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
