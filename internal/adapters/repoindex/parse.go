// Package repoindex parses the two repository index wire formats named in
// §4.3 into domain.RepositoryIndex: a line-oriented "field: value" paragraph
// format (the primary format, modeled on a CRAN-style PACKAGES file), and a
// JSON object mapping package name to an array of entries (used by one
// known repository family).
package repoindex

import (
	"strings"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

// ErrIndexInvalid is returned when an index's bytes cannot be parsed in
// either supported format.
var ErrIndexInvalid = zerr.New("repository index could not be parsed")

// Parse dispatches data to the DCF or JSON parser by sniffing its first
// non-whitespace byte, and builds a domain.RepositoryIndex stamped with the
// repository's coordinates. isBinary flags every entry in this index as a
// precompiled binary (the source/binary split is per-repository-URL in
// practice: a repository serving binaries and one serving source are two
// distinct URLs in the manifest, each fetched and indexed separately).
func Parse(data []byte, repoURL, engineVersion, arch string, isBinary bool) (*domain.RepositoryIndex, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return &domain.RepositoryIndex{
			RepositoryURL: repoURL,
			Architecture:  arch,
			EngineVersion: engineVersion,
			Format:        domain.IndexFormatDCF,
			Packages:      map[domain.PackageName]domain.PackageEntries{},
		}, nil
	}

	var (
		packages map[domain.PackageName]domain.PackageEntries
		format   domain.IndexFormat
		err      error
	)

	if trimmed[0] == '{' || trimmed[0] == '[' {
		format = domain.IndexFormatJSON
		packages, err = parseJSON([]byte(trimmed), repoURL, isBinary)
	} else {
		format = domain.IndexFormatDCF
		packages, err = parseDCF(trimmed, repoURL, isBinary)
	}
	if err != nil {
		return nil, zerr.Wrap(ErrIndexInvalid, err.Error())
	}

	return &domain.RepositoryIndex{
		RepositoryURL: repoURL,
		Architecture:  arch,
		EngineVersion: engineVersion,
		Format:        format,
		Packages:      packages,
	}, nil
}

// addEntry folds one (name, version, entry) row into packages, keeping
// Latest as the highest version seen for that name.
func addEntry(packages map[domain.PackageName]domain.PackageEntries, name domain.PackageName, e domain.IndexEntry) {
	pkg := packages[name]
	pkg.Entries = append(pkg.Entries, e)
	if pkg.Latest.IsZero() || e.Version.Compare(pkg.Latest) > 0 {
		pkg.Latest = e.Version
	}
	packages[name] = pkg
}

// downloadURL joins a repository's base URL with an archive's relative
// filename the way a CRAN-style mirror does.
func downloadURL(repoURL, name, version string, isBinary bool) string {
	ext := ".tar.gz"
	if isBinary {
		ext = ".tgz"
	}
	return strings.TrimRight(repoURL, "/") + "/" + name + "_" + version + ext
}
