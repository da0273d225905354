// Package manifest implements ports.ManifestLoader against the TOML project
// configuration file.
package manifest

import (
	"github.com/BurntSushi/toml"
)

// fileDTO mirrors the top-level TOML document. Dependencies are decoded as
// toml.Primitive so each entry's shape (bare string vs. inline table) can be
// discriminated before the tagged-variant decode in dependency.go.
type fileDTO struct {
	UseLockfile  *bool  `toml:"use_lockfile"`
	LockfileName string `toml:"lockfile_name"`
	Library      string `toml:"library"`
	Project      project `toml:"project"`
}

type project struct {
	Name                  string          `toml:"name"`
	RVersion              string          `toml:"r_version"`
	Repositories          []repositoryDTO `toml:"repositories"`
	Dependencies          []toml.Primitive `toml:"dependencies"`
	PreferRepositoriesFor []string        `toml:"prefer_repositories_for"`
}

type repositoryDTO struct {
	Alias       string `toml:"alias"`
	URL         string `toml:"url"`
	ForceSource bool   `toml:"force_source"`
}

// dependencyDTO is the inline-table shape of a dependency entry. Every field
// is optional so a fully detailed table round-trips through one struct; a
// bare-string entry never reaches this type (see decodeDependency).
type dependencyDTO struct {
	Name string `toml:"name"`

	Path string `toml:"path"`

	Git    string `toml:"git"`
	Branch string `toml:"branch"`
	Tag    string `toml:"tag"`
	Commit string `toml:"commit"`

	Directory string `toml:"directory"`

	URL string `toml:"url"`

	Version    string `toml:"version"`
	Repository string `toml:"repository"`

	InstallSuggestions bool `toml:"install_suggestions"`
	ForceSource        bool `toml:"force_source"`
	DependenciesOnly   bool `toml:"dependencies_only"`
}
