package commands

import (
	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Declare a new dependency in the manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := dependencySpecFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			return c.app.Add(project(cmd), spec)
		},
	}

	cmd.Flags().String("version", "", `Version requirement, e.g. ">= 1.2.0"`)
	cmd.Flags().String("repository", "", "Restrict resolution to one repository alias")
	cmd.Flags().String("path", "", "Local filesystem path (source = local)")
	cmd.Flags().String("git", "", "Git remote URL (source = git)")
	cmd.Flags().String("branch", "", "Git branch to track")
	cmd.Flags().String("tag", "", "Git tag to pin")
	cmd.Flags().String("commit", "", "Git commit SHA to pin")
	cmd.Flags().String("directory", "", "Subdirectory within the git checkout holding the package")
	cmd.Flags().String("url", "", "Direct archive URL (source = url)")
	cmd.Flags().Bool("force-source", false, "Always build from source, never from a binary")
	cmd.Flags().Bool("dependencies-only", false, "Install this package's dependencies but not the package itself")
	cmd.Flags().Bool("install-suggestions", false, "Also resolve and install this package's Suggests edges")

	return cmd
}

func dependencySpecFromFlags(cmd *cobra.Command, name string) (domain.DependencySpec, error) {
	versionReq, _ := cmd.Flags().GetString("version")
	repository, _ := cmd.Flags().GetString("repository")
	path, _ := cmd.Flags().GetString("path")
	gitURL, _ := cmd.Flags().GetString("git")
	branch, _ := cmd.Flags().GetString("branch")
	tag, _ := cmd.Flags().GetString("tag")
	commit, _ := cmd.Flags().GetString("commit")
	directory, _ := cmd.Flags().GetString("directory")
	url, _ := cmd.Flags().GetString("url")
	forceSource, _ := cmd.Flags().GetBool("force-source")
	dependenciesOnly, _ := cmd.Flags().GetBool("dependencies-only")
	installSuggestions, _ := cmd.Flags().GetBool("install-suggestions")

	spec := domain.DependencySpec{
		Name:               name,
		Source:             domain.SourceRepository,
		RepositoryAlias:    repository,
		ForceSource:        forceSource,
		DependenciesOnly:   dependenciesOnly,
		InstallSuggestions: installSuggestions,
	}

	switch {
	case path != "":
		spec.Source = domain.SourceLocal
		spec.Path = path
	case gitURL != "":
		spec.Source = domain.SourceGit
		spec.GitURL = gitURL
		spec.Directory = directory
		spec.GitRef = gitRefFromFlags(branch, tag, commit)
	case url != "":
		spec.Source = domain.SourceURL
		spec.URL = url
	}

	if versionReq != "" {
		req, err := domain.ParseRequirement(versionReq)
		if err != nil {
			return domain.DependencySpec{}, err
		}
		spec.Requirement = req
	}

	return spec, nil
}

func gitRefFromFlags(branch, tag, commit string) domain.GitRef {
	switch {
	case commit != "":
		return domain.GitRef{Kind: domain.GitRefCommit, Value: commit}
	case tag != "":
		return domain.GitRef{Kind: domain.GitRefTag, Value: tag}
	case branch != "":
		return domain.GitRef{Kind: domain.GitRefBranch, Value: branch}
	default:
		return domain.GitRef{Kind: domain.GitRefBranch, Value: "HEAD"}
	}
}
