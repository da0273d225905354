// Package commands implements the rv CLI's cobra command tree.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go.rv.dev/rv/internal/app"
	"go.rv.dev/rv/internal/build"
	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/engine/resolver"
)

// Application is the narrow set of App operations the CLI drives.
type Application interface {
	Plan(ctx context.Context, proj app.Project) (*domain.Plan, *domain.Resolution, error)
	Sync(ctx context.Context, proj app.Project, opts app.SyncOptions) (*domain.SyncReport, *domain.Plan, error)
	Upgrade(ctx context.Context, proj app.Project, parallelism int) (*domain.SyncReport, *domain.Plan, error)
	Add(proj app.Project, spec domain.DependencySpec) error
	Tree(ctx context.Context, proj app.Project) (*domain.Resolution, []resolver.Diagnostic, error)
	Library(proj app.Project) (*domain.Library, error)
	CacheRoot() string
	ClearCache() error
	Summary(ctx context.Context, proj app.Project) ([]domain.SummaryEntry, error)
	SysDepHints(ctx context.Context, proj app.Project, osName, osVersion string) (map[string][]string, error)
	ConfigureAddRepository(proj app.Project, repo domain.Repository) error
	ConfigureRemoveRepository(proj app.Project, alias string) error
	ConfigureUpdateRepository(proj app.Project, repo domain.Repository) error
	ConfigureReplaceRepositories(proj app.Project, repos []domain.Repository) error
	ConfigureClearRepositories(proj app.Project) error
}

// CLI wraps the cobra command tree, keeping Application narrow so tests can
// substitute a fake.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// New builds the full rv command tree over a.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "rv",
		Short:         "A reproducible package manager for R",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))

	rootCmd.PersistentFlags().String("manifest", domain.DefaultManifestName, "Path to the project manifest")
	rootCmd.PersistentFlags().String("lockfile", "", "Path to the lockfile (overrides the manifest's lockfile_name)")
	rootCmd.PersistentFlags().String("library", "", "Path the installed library root (defaults to ./rv_library)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit structured JSON output instead of human-readable text")

	c := &CLI{app: a, rootCmd: rootCmd}

	rootCmd.AddCommand(
		c.newPlanCmd(),
		c.newSyncCmd(),
		c.newAddCmd(),
		c.newUpgradeCmd(),
		c.newTreeCmd(),
		c.newLibraryCmd(),
		c.newCacheCmd(),
		c.newSummaryCmd(),
		c.newSysDepsCmd(),
		c.newConfigureCmd(),
	)

	return c
}

// Execute runs the root command against ctx.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// project builds an app.Project from the root persistent flags.
func project(cmd *cobra.Command) app.Project {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	lockfilePath, _ := cmd.Flags().GetString("lockfile")
	libraryRoot, _ := cmd.Flags().GetString("library")
	if libraryRoot == "" {
		libraryRoot = "rv_library"
	}
	return app.Project{
		ManifestPath: manifestPath,
		LockfilePath: lockfilePath,
		LibraryRoot:  libraryRoot,
	}
}

func jsonRequested(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}
