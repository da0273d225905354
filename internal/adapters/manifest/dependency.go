package manifest

import (
	"github.com/BurntSushi/toml"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

// recognizedOptions lists every key a dependency inline table may carry.
// Anything else is ErrUnknownDependencyOption (§9).
var recognizedOptions = map[string]bool{
	"name": true, "path": true, "git": true, "branch": true, "tag": true,
	"commit": true, "directory": true, "url": true, "version": true,
	"repository": true, "install_suggestions": true, "force_source": true,
	"dependencies_only": true,
}

// decodeDependency discriminates one dependency entry's TOML shape: a bare
// string names a repository-tier dependency by name; anything else must be
// an inline table, decoded into dependencyDTO and then validated for
// unknown keys and source-discriminant ambiguity before being converted into
// a domain.DependencySpec.
func decodeDependency(md toml.MetaData, prim toml.Primitive) (domain.DependencySpec, error) {
	var name string
	if err := md.PrimitiveDecode(prim, &name); err == nil {
		return domain.DependencySpec{Name: name, Source: domain.SourceRepository}, nil
	}

	var dto dependencyDTO
	if err := md.PrimitiveDecode(prim, &dto); err != nil {
		return domain.DependencySpec{}, zerr.Wrap(domain.ErrManifestInvalid, "dependency entry is neither a string nor a table: "+err.Error())
	}

	if err := checkUnknownKeys(md, prim); err != nil {
		return domain.DependencySpec{}, err
	}

	if dto.Name == "" {
		return domain.DependencySpec{}, zerr.With(domain.ErrManifestInvalid, "reason", "dependency table is missing name")
	}

	spec := domain.DependencySpec{
		Name:               dto.Name,
		RepositoryAlias:    dto.Repository,
		InstallSuggestions: dto.InstallSuggestions,
		ForceSource:        dto.ForceSource,
		DependenciesOnly:   dto.DependenciesOnly,
	}

	discriminants := 0
	if dto.Path != "" {
		discriminants++
		spec.Source = domain.SourceLocal
		spec.Path = dto.Path
	}
	if dto.Git != "" {
		discriminants++
		spec.Source = domain.SourceGit
		spec.GitURL = dto.Git
		spec.Directory = dto.Directory
		ref, err := gitRefFrom(dto)
		if err != nil {
			return domain.DependencySpec{}, err
		}
		spec.GitRef = ref
	}
	if dto.URL != "" {
		discriminants++
		spec.Source = domain.SourceURL
		spec.URL = dto.URL
	}
	if discriminants > 1 {
		return domain.DependencySpec{}, zerr.With(domain.ErrAmbiguousSourceDiscriminant, "name", dto.Name)
	}
	if discriminants == 0 {
		spec.Source = domain.SourceRepository
	}

	if dto.Version != "" {
		req, err := domain.ParseRequirement(dto.Version)
		if err != nil {
			return domain.DependencySpec{}, zerr.Wrap(domain.ErrManifestInvalid, "dependency "+dto.Name+": "+err.Error())
		}
		spec.Requirement = req
	}

	return spec, nil
}

// gitRefFrom picks the one of branch/tag/commit the table names; more than
// one present is ErrAmbiguousSourceDiscriminant, none defaults to the HEAD
// branch.
func gitRefFrom(dto dependencyDTO) (domain.GitRef, error) {
	set := 0
	var ref domain.GitRef
	if dto.Branch != "" {
		set++
		ref = domain.GitRef{Kind: domain.GitRefBranch, Value: dto.Branch}
	}
	if dto.Tag != "" {
		set++
		ref = domain.GitRef{Kind: domain.GitRefTag, Value: dto.Tag}
	}
	if dto.Commit != "" {
		set++
		ref = domain.GitRef{Kind: domain.GitRefCommit, Value: dto.Commit}
	}
	if set > 1 {
		return domain.GitRef{}, zerr.With(domain.ErrAmbiguousSourceDiscriminant, "git", dto.Git)
	}
	if set == 0 {
		return domain.GitRef{Kind: domain.GitRefBranch, Value: "HEAD"}, nil
	}
	return ref, nil
}

// checkUnknownKeys decodes prim into a raw map and rejects any key this
// system does not recognize, independent of dependencyDTO's silent ignore of
// unmapped keys.
func checkUnknownKeys(md toml.MetaData, prim toml.Primitive) error {
	var raw map[string]any
	if err := md.PrimitiveDecode(prim, &raw); err != nil {
		return zerr.Wrap(domain.ErrManifestInvalid, err.Error())
	}
	for key := range raw {
		if !recognizedOptions[key] {
			return zerr.With(domain.ErrUnknownDependencyOption, "option", key)
		}
	}
	return nil
}
