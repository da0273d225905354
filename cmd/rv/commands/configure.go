package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
)

func (c *CLI) newConfigureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Mutate the manifest's configuration in place",
	}
	cmd.AddCommand(c.newConfigureRepositoryCmd())
	return cmd
}

func (c *CLI) newConfigureRepositoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repository",
		Short: "Manage the manifest's repository list",
	}
	cmd.AddCommand(
		c.newConfigureRepositoryAddCmd(),
		c.newConfigureRepositoryRemoveCmd(),
		c.newConfigureRepositoryUpdateCmd(),
		c.newConfigureRepositoryReplaceCmd(),
		c.newConfigureRepositoryClearCmd(),
	)
	return cmd
}

func (c *CLI) newConfigureRepositoryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <alias> <url>",
		Short: "Add a repository to the manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			forceSource, _ := cmd.Flags().GetBool("force-source")
			return c.app.ConfigureAddRepository(project(cmd), domain.Repository{
				Alias: args[0], URL: args[1], ForceSource: forceSource,
			})
		},
	}
	cmd.Flags().Bool("force-source", false, "Always build packages from this repository from source")
	return cmd
}

func (c *CLI) newConfigureRepositoryRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <alias>",
		Short: "Remove a repository from the manifest by alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.ConfigureRemoveRepository(project(cmd), args[0])
		},
	}
}

func (c *CLI) newConfigureRepositoryUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <alias> <url>",
		Short: "Replace an existing repository's URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			forceSource, _ := cmd.Flags().GetBool("force-source")
			return c.app.ConfigureUpdateRepository(project(cmd), domain.Repository{
				Alias: args[0], URL: args[1], ForceSource: forceSource,
			})
		},
	}
	cmd.Flags().Bool("force-source", false, "Always build packages from this repository from source")
	return cmd
}

func (c *CLI) newConfigureRepositoryReplaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace the manifest's entire repository list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetStringArray("repo")
			repos := make([]domain.Repository, 0, len(raw))
			for _, entry := range raw {
				alias, url, ok := strings.Cut(entry, "=")
				if !ok {
					return zerr.With(domain.ErrManifestInvalid, "reason", "--repo entries must be alias=url, got "+entry)
				}
				repos = append(repos, domain.Repository{Alias: alias, URL: url})
			}
			return c.app.ConfigureReplaceRepositories(project(cmd), repos)
		},
	}
	cmd.Flags().StringArray("repo", nil, "Repository entry as alias=url; repeat for multiple")
	return cmd
}

func (c *CLI) newConfigureRepositoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every repository from the manifest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.ConfigureClearRepositories(project(cmd))
		},
	}
}
