package manifest

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

// Loader implements ports.ManifestLoader over a TOML file on disk.
type Loader struct{}

// New returns a ready-to-use Loader. The TOML format carries no
// configuration of its own, so this exists only for symmetry with the
// module's other adapter constructors.
func New() *Loader {
	return &Loader{}
}

// Load reads and validates the manifest at path.
func (l *Loader) Load(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the caller, not untrusted input
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read manifest")
	}

	var dto fileDTO
	md, err := toml.Decode(string(data), &dto)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrManifestInvalid, err.Error())
	}

	m := &domain.Manifest{
		UseLockfile:           true,
		LockfileName:          domain.DefaultLockfileName,
		LibraryOverride:       dto.Library,
		ProjectName:           dto.Project.Name,
		RVersion:              dto.Project.RVersion,
		PreferRepositoriesFor: dto.Project.PreferRepositoriesFor,
	}
	if dto.UseLockfile != nil {
		m.UseLockfile = *dto.UseLockfile
	}
	if dto.LockfileName != "" {
		m.LockfileName = dto.LockfileName
	}

	for _, r := range dto.Project.Repositories {
		m.Repositories = append(m.Repositories, domain.Repository{
			Alias:       r.Alias,
			URL:         r.URL,
			ForceSource: r.ForceSource,
		})
	}

	for _, prim := range dto.Project.Dependencies {
		spec, err := decodeDependency(md, prim)
		if err != nil {
			return nil, err
		}
		m.Dependencies = append(m.Dependencies, spec)
	}

	if err := validate(m); err != nil {
		return nil, err
	}

	return m, nil
}

// validate checks manifest-wide invariants that no single dependency or
// repository entry can enforce on its own.
func validate(m *domain.Manifest) error {
	if m.RVersion == "" {
		return zerr.With(domain.ErrManifestInvalid, "reason", "project.r_version is required")
	}
	if _, err := domain.ParseVersion(padMinor(m.RVersion)); err != nil {
		return zerr.Wrap(domain.ErrManifestInvalid, "project.r_version: "+err.Error())
	}

	seen := make(map[string]bool, len(m.Repositories))
	for _, r := range m.Repositories {
		if seen[r.Alias] {
			return zerr.With(domain.ErrManifestInvalid, "reason", "duplicate repository alias "+r.Alias)
		}
		seen[r.Alias] = true
	}

	for _, d := range m.Dependencies {
		if d.Source == domain.SourceRepository && d.RepositoryAlias != "" {
			if _, ok := m.RepositoryByAlias(d.RepositoryAlias); !ok {
				return zerr.With(domain.ErrManifestInvalid, "reason", "dependency "+d.Name+" names unknown repository alias "+d.RepositoryAlias)
			}
		}
	}

	declared := make(map[string]bool, len(m.Dependencies))
	for _, d := range m.Dependencies {
		declared[d.Name] = true
	}
	for _, name := range m.PreferRepositoriesFor {
		if !declared[name] {
			return zerr.With(zerr.With(domain.ErrDependencyNotFound, "name", name), "reason", "prefer_repositories_for names a dependency absent from project.dependencies")
		}
	}

	return nil
}

// padMinor appends ".0" when r_version names only a major component, since
// domain.ParseVersion requires at least major.minor.
func padMinor(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s
		}
	}
	return s + ".0"
}

// Write formats and writes m to path, matching the canonical formatting
// `configure` commands produce.
func (l *Loader) Write(path string, m *domain.Manifest) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)

	doc := toDocument(m)
	if err := enc.Encode(doc); err != nil {
		return zerr.Wrap(err, "failed to encode manifest")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // manifest is not sensitive
		return zerr.Wrap(err, "failed to write manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.Wrap(err, "failed to finalize manifest write")
	}
	return nil
}

// document is the canonical write-side shape: dependencies round-trip as
// inline tables even when they could be written as a bare string, since
// toml.Primitive has no encode-side counterpart and the formatter favors one
// unambiguous shape over byte-for-byte preservation of what the user typed.
type document struct {
	UseLockfile  bool           `toml:"use_lockfile"`
	LockfileName string         `toml:"lockfile_name"`
	Library      string         `toml:"library,omitempty"`
	Project      documentProject `toml:"project"`
}

type documentProject struct {
	Name                  string          `toml:"name"`
	RVersion              string          `toml:"r_version"`
	Repositories          []repositoryDTO `toml:"repositories"`
	Dependencies          []dependencyDTO `toml:"dependencies"`
	PreferRepositoriesFor []string        `toml:"prefer_repositories_for,omitempty"`
}

func toDocument(m *domain.Manifest) document {
	doc := document{
		UseLockfile:           m.UseLockfile,
		LockfileName:          m.LockfileName,
		Library:               m.LibraryOverride,
		Project: documentProject{
			Name:                  m.ProjectName,
			RVersion:              m.RVersion,
			PreferRepositoriesFor: m.PreferRepositoriesFor,
		},
	}

	for _, r := range m.Repositories {
		doc.Project.Repositories = append(doc.Project.Repositories, repositoryDTO{
			Alias:       r.Alias,
			URL:         r.URL,
			ForceSource: r.ForceSource,
		})
	}

	for _, d := range m.Dependencies {
		dto := dependencyDTO{
			Name:               d.Name,
			Repository:         d.RepositoryAlias,
			InstallSuggestions: d.InstallSuggestions,
			ForceSource:        d.ForceSource,
			DependenciesOnly:   d.DependenciesOnly,
		}
		if !d.Requirement.IsEmpty() {
			dto.Version = requirementString(d.Requirement)
		}
		switch d.Source {
		case domain.SourceLocal:
			dto.Path = d.Path
		case domain.SourceGit:
			dto.Git = d.GitURL
			dto.Directory = d.Directory
			switch d.GitRef.Kind {
			case domain.GitRefBranch:
				if d.GitRef.Value != "HEAD" {
					dto.Branch = d.GitRef.Value
				}
			case domain.GitRefTag:
				dto.Tag = d.GitRef.Value
			case domain.GitRefCommit:
				dto.Commit = d.GitRef.Value
			}
		case domain.SourceURL:
			dto.URL = d.URL
		}
		doc.Project.Dependencies = append(doc.Project.Dependencies, dto)
	}

	return doc
}

// requirementString renders a single-clause requirement back to "<op>
// <version>" form. The manifest grammar has no surface for multi-clause
// requirements on a dependency entry, so the resolver never produces one
// here; this only ever sees what the reader itself parsed.
func requirementString(r domain.VersionRequirement) string {
	clauses := r.Clauses()
	if len(clauses) == 0 {
		return ""
	}
	return clauses[0].String()
}
