package lockfile

import (
	"encoding/json"

	"go.rv.dev/rv/internal/core/domain"
)

// entryDTO mirrors domain.LockfileEntry with string-rendered enums, so the
// JSON form reads a source kind as "git" rather than an integer.
type entryDTO struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`

	RepositoryAlias string `json:"repository_alias,omitempty"`
	RepositoryURL   string `json:"repository_url,omitempty"`
	DownloadURL     string `json:"download_url,omitempty"`
	IsBinary        bool   `json:"is_binary,omitempty"`

	GitURL       string `json:"git_url,omitempty"`
	GitRefKind   string `json:"git_ref_kind,omitempty"`
	GitRefValue  string `json:"git_ref_value,omitempty"`
	GitSHA       string `json:"git_sha,omitempty"`
	Subdirectory string `json:"subdirectory,omitempty"`

	LocalPath string `json:"local_path,omitempty"`
	URL       string `json:"url,omitempty"`

	Dependencies []string `json:"dependencies,omitempty"`

	ForceSource        bool `json:"force_source,omitempty"`
	InstallSuggestions bool `json:"install_suggestions,omitempty"`
	DependenciesOnly   bool `json:"dependencies_only,omitempty"`

	Digest string `json:"digest,omitempty"`
}

type documentDTO struct {
	FormatVersion int        `json:"format_version"`
	EngineVersion string     `json:"engine_version"`
	Architecture  string     `json:"architecture"`
	Entries       []entryDTO `json:"entries"`
}

// MarshalJSON renders l in a human-readable JSON exchange format (§9),
// independent of the binary format Store reads and writes. No CLI command
// calls it; `plan --json` renders the plan's actions instead.
func MarshalJSON(l *domain.Lockfile) ([]byte, error) {
	doc := documentDTO{
		FormatVersion: l.FormatVersion,
		EngineVersion: l.EngineVersion,
		Architecture:  l.Architecture,
	}

	for _, e := range l.Entries {
		doc.Entries = append(doc.Entries, entryDTO{
			Name:               e.Name,
			Version:            e.Version,
			Source:             e.Source.String(),
			RepositoryAlias:    e.RepositoryAlias,
			RepositoryURL:      e.RepositoryURL,
			DownloadURL:        e.DownloadURL,
			IsBinary:           e.IsBinary,
			GitURL:             e.GitURL,
			GitRefKind:         e.GitRefKind.String(),
			GitRefValue:        e.GitRefValue,
			GitSHA:             e.GitSHA,
			Subdirectory:       e.Subdirectory,
			LocalPath:          e.LocalPath,
			URL:                e.URL,
			Dependencies:       e.Dependencies,
			ForceSource:        e.ForceSource,
			InstallSuggestions: e.InstallSuggestions,
			DependenciesOnly:   e.DependenciesOnly,
			Digest:             e.Digest,
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
