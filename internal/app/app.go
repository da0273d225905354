// Package app implements the application layer for rv: it composes the
// resolver, planner, and sync engine with their adapters into the handful
// of operations the CLI exposes (plan, sync, add, upgrade, tree, library,
// cache, sysdeps, configure).
package app

import (
	"context"
	"os"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
	"go.rv.dev/rv/internal/engine/planner"
	"go.rv.dev/rv/internal/engine/resolver"
	syncengine "go.rv.dev/rv/internal/engine/sync"
)

// builtinPackages are the packages shipped with every R installation,
// always at the engine's own version, never installed.
var builtinPackages = []string{
	"base", "compiler", "datasets", "grDevices", "graphics", "grid",
	"methods", "parallel", "splines", "stats", "stats4", "tcltk", "tools",
	"utils",
}

// App composes every engine and adapter into the operations the CLI calls.
type App struct {
	manifestLoader ports.ManifestLoader
	lockfileStore  ports.LockfileStore
	resolver       *resolver.Resolver
	planner        *planner.Planner
	syncPool       *syncengine.Pool
	library        ports.LibraryStore
	cache          ports.DiskCache
	engineProbe    ports.EngineProbe
	sysdeps        ports.SysDepLookup
	handlers       map[domain.SourceKind]ports.SourceHandler
	logger         ports.Logger
}

// New builds an App from its collaborators.
func New(
	manifestLoader ports.ManifestLoader,
	lockfileStore ports.LockfileStore,
	res *resolver.Resolver,
	pln *planner.Planner,
	pool *syncengine.Pool,
	library ports.LibraryStore,
	cache ports.DiskCache,
	engineProbe ports.EngineProbe,
	sysdeps ports.SysDepLookup,
	handlers map[domain.SourceKind]ports.SourceHandler,
	logger ports.Logger,
) *App {
	return &App{
		manifestLoader: manifestLoader,
		lockfileStore:  lockfileStore,
		resolver:       res,
		planner:        pln,
		syncPool:       pool,
		library:        library,
		cache:          cache,
		engineProbe:    engineProbe,
		sysdeps:        sysdeps,
		handlers:       handlers,
		logger:         logger,
	}
}

// Project bundles the manifest path and the paths derived from it, since
// every operation below needs the same three.
type Project struct {
	ManifestPath string
	LockfilePath string
	LibraryRoot  string
}

func (a *App) loadManifest(manifestPath string) (*domain.Manifest, error) {
	m, err := a.manifestLoader.Load(manifestPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load manifest")
	}
	return m, nil
}

func (a *App) lockfilePath(proj Project, m *domain.Manifest) string {
	if !m.UseLockfile {
		return ""
	}
	if proj.LockfilePath != "" {
		return proj.LockfilePath
	}
	return m.LockfileName
}

func (a *App) loadLockfile(proj Project, m *domain.Manifest) (*domain.Lockfile, error) {
	path := a.lockfilePath(proj, m)
	if path == "" {
		return nil, nil
	}
	l, err := a.lockfileStore.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load lockfile")
	}
	return l, nil
}

func (a *App) detectBuiltins() (*domain.BuiltinSet, ports.EngineInfo, error) {
	info, err := a.engineProbe.Detect()
	if err != nil {
		return nil, ports.EngineInfo{}, zerr.Wrap(err, "failed to detect engine")
	}
	versions := make(map[string]string, len(builtinPackages))
	for _, name := range builtinPackages {
		versions[name] = info.Version
	}
	builtins, err := domain.NewBuiltinSet(versions)
	if err != nil {
		return nil, ports.EngineInfo{}, zerr.Wrap(err, "failed to build builtin set")
	}
	return builtins, info, nil
}

// Resolve runs the resolver against the manifest at proj.ManifestPath,
// consulting the lockfile unless fullUpgrade is set.
func (a *App) Resolve(ctx context.Context, proj Project, fullUpgrade bool) (*domain.Resolution, []resolver.Diagnostic, *domain.Manifest, ports.EngineInfo, error) {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return nil, nil, nil, ports.EngineInfo{}, err
	}

	lockfile, err := a.loadLockfile(proj, m)
	if err != nil {
		if !fullUpgrade {
			return nil, nil, nil, ports.EngineInfo{}, err
		}
		lockfile = nil
	}
	if fullUpgrade {
		lockfile = nil
	}

	builtins, info, err := a.detectBuiltins()
	if err != nil {
		return nil, nil, nil, ports.EngineInfo{}, err
	}

	resolution, diags, err := a.resolver.Resolve(ctx, m, lockfile, builtins, resolver.Options{
		EngineVersion: info.Version,
		Architecture:  info.Architecture,
		FullUpgrade:   fullUpgrade,
	})
	if err != nil {
		return nil, nil, nil, ports.EngineInfo{}, err
	}
	return resolution, diags, m, info, nil
}

// Tree resolves the manifest and returns the resulting Resolution for
// display, without touching the installed library or the lockfile.
func (a *App) Tree(ctx context.Context, proj Project) (*domain.Resolution, []resolver.Diagnostic, error) {
	resolution, diags, _, _, err := a.Resolve(ctx, proj, false)
	return resolution, diags, err
}

// Plan resolves the manifest and diffs it against the installed library,
// without executing anything.
func (a *App) Plan(ctx context.Context, proj Project) (*domain.Plan, *domain.Resolution, error) {
	resolution, _, m, info, err := a.Resolve(ctx, proj, false)
	if err != nil {
		return nil, nil, err
	}

	lib, err := a.library.Current(a.libraryDir(proj, m, info))
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to read installed library")
	}

	plan, err := a.planner.Plan(ctx, resolution, lib, planner.Options{
		LibraryRoot:     proj.LibraryRoot,
		LibraryOverride: m.LibraryOverride,
		EngineVersion:   info.Version,
		Architecture:    info.Architecture,
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, resolution, nil
}

func (a *App) libraryDir(proj Project, m *domain.Manifest, info ports.EngineInfo) string {
	override := ""
	if m != nil {
		override = m.LibraryOverride
	}
	return domain.LibraryPackagePath(proj.LibraryRoot, override, info.Version, info.Architecture, "")
}

// SyncOptions configures one sync run.
type SyncOptions struct {
	Parallelism int
	FullUpgrade bool
}

// Sync resolves, plans, executes the plan, and — if every package
// installed or was kept — persists the new lockfile (§7: "lockfile is
// written only after a fully successful sync").
func (a *App) Sync(ctx context.Context, proj Project, opts SyncOptions) (*domain.SyncReport, *domain.Plan, error) {
	resolution, _, m, info, err := a.Resolve(ctx, proj, opts.FullUpgrade)
	if err != nil {
		return nil, nil, err
	}

	lib, err := a.library.Current(a.libraryDir(proj, m, info))
	if err != nil {
		return nil, nil, zerr.Wrap(err, "failed to read installed library")
	}

	plan, err := a.planner.Plan(ctx, resolution, lib, planner.Options{
		LibraryRoot:     proj.LibraryRoot,
		LibraryOverride: m.LibraryOverride,
		EngineVersion:   info.Version,
		Architecture:    info.Architecture,
	})
	if err != nil {
		return nil, nil, err
	}

	report, err := a.syncPool.Run(ctx, plan, syncengine.Options{
		Parallelism:     opts.Parallelism,
		LibraryRoot:     proj.LibraryRoot,
		LibraryOverride: m.LibraryOverride,
		EngineVersion:   info.Version,
		Architecture:    info.Architecture,
		CacheRoot:       a.cache.Root(),
	})
	if err != nil {
		return nil, plan, err
	}

	if report.AllSucceeded() {
		if path := a.lockfilePath(proj, m); path != "" {
			lockfile := &domain.Lockfile{
				FormatVersion: domain.LockfileFormatVersion,
				EngineVersion: info.Version,
				Architecture:  info.Architecture,
			}
			for node := range resolution.All() {
				lockfile.Entries = append(lockfile.Entries, domain.FromResolvedNode(node))
			}
			if err := a.lockfileStore.Save(path, lockfile); err != nil {
				return report, plan, zerr.Wrap(err, "failed to save lockfile")
			}
		}
	}

	return report, plan, nil
}

// Upgrade is Sync with the lockfile tier disabled, forcing every dependency
// to re-resolve against the manifest's current repositories and remotes.
func (a *App) Upgrade(ctx context.Context, proj Project, parallelism int) (*domain.SyncReport, *domain.Plan, error) {
	return a.Sync(ctx, proj, SyncOptions{Parallelism: parallelism, FullUpgrade: true})
}

// Add appends a dependency to the manifest and writes it back, without
// resolving or syncing (the caller runs Sync afterward to install it).
func (a *App) Add(proj Project, spec domain.DependencySpec) error {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return err
	}

	for _, existing := range m.Dependencies {
		if existing.Name == spec.Name {
			return zerr.With(domain.ErrDependencyExists, "name", spec.Name)
		}
	}

	m.Dependencies = append(m.Dependencies, spec)
	return a.manifestLoader.Write(proj.ManifestPath, m)
}

// Library lists the currently installed packages for the detected engine.
func (a *App) Library(proj Project) (*domain.Library, error) {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return nil, err
	}
	info, err := a.engineProbe.Detect()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to detect engine")
	}
	return a.library.Current(a.libraryDir(proj, m, info))
}

// CacheRoot returns the disk cache's effective root directory.
func (a *App) CacheRoot() string {
	return a.cache.Root()
}

// ClearCache removes every entry under the cache root. It is a thin
// wrapper, not a DiskCache method, because clearing the whole cache is a
// CLI-only operation with no engine collaborator that needs it.
func (a *App) ClearCache() error {
	root := a.cache.Root()
	if root == "" {
		return zerr.New("cache root is not configured")
	}
	if err := os.RemoveAll(root); err != nil {
		return zerr.Wrap(err, "failed to clear cache")
	}
	return nil
}

// SysDepHints maps every resolved package's declared system-dependency
// hints to concrete OS package names, by describing each resolved node
// through its source handler.
func (a *App) SysDepHints(ctx context.Context, proj Project, osName, osVersion string) (map[string][]string, error) {
	resolution, _, err := a.Tree(ctx, proj)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for node := range resolution.All() {
		handler, ok := a.handlers[node.Source]
		if !ok {
			continue
		}
		desc, err := handler.DescribeOnly(ctx, node)
		if err != nil {
			continue
		}
		for _, hint := range desc.SystemLibraryHints {
			packages, err := a.sysdeps.Map(hint, osName, osVersion)
			if err != nil || len(packages) == 0 {
				continue
			}
			result[node.Name.String()] = append(result[node.Name.String()], packages...)
		}
	}
	return result, nil
}

// Summary resolves the manifest and reports, per package, what it resolved
// to and whether it is currently installed.
func (a *App) Summary(ctx context.Context, proj Project) ([]domain.SummaryEntry, error) {
	resolution, _, m, info, err := a.Resolve(ctx, proj, false)
	if err != nil {
		return nil, err
	}

	lib, err := a.library.Current(a.libraryDir(proj, m, info))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read installed library")
	}

	var entries []domain.SummaryEntry
	for node := range resolution.All() {
		_, installed := lib.Entry(node.Name)
		entries = append(entries, domain.SummaryEntry{
			Name:      node.Name,
			Version:   node.Version,
			Source:    node.Source,
			Origin:    summaryOrigin(node),
			Installed: installed,
		})
	}
	return entries, nil
}

func summaryOrigin(node domain.ResolvedNode) string {
	switch node.Source {
	case domain.SourceRepository:
		if node.Repository != nil {
			return node.Repository.Alias
		}
	case domain.SourceGit:
		if node.Git != nil {
			return node.Git.URL
		}
	case domain.SourceLocal:
		if node.Local != nil {
			return node.Local.Path
		}
	case domain.SourceURL:
		if node.URL != nil {
			return node.URL.URL
		}
	}
	return ""
}

// ConfigureAddRepository appends a repository to the manifest's ordered
// list, rejecting a duplicate alias.
func (a *App) ConfigureAddRepository(proj Project, repo domain.Repository) error {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return err
	}
	if _, ok := m.RepositoryByAlias(repo.Alias); ok {
		return zerr.With(domain.ErrRepositoryAliasExists, "alias", repo.Alias)
	}
	m.Repositories = append(m.Repositories, repo)
	return a.manifestLoader.Write(proj.ManifestPath, m)
}

// ConfigureRemoveRepository deletes a repository by alias.
func (a *App) ConfigureRemoveRepository(proj Project, alias string) error {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return err
	}
	idx := -1
	for i, r := range m.Repositories {
		if r.Alias == alias {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zerr.With(domain.ErrRepositoryAliasNotFound, "alias", alias)
	}
	m.Repositories = append(m.Repositories[:idx], m.Repositories[idx+1:]...)
	return a.manifestLoader.Write(proj.ManifestPath, m)
}

// ConfigureUpdateRepository replaces the URL/ForceSource of an existing
// repository, keeping its position in the ordered list.
func (a *App) ConfigureUpdateRepository(proj Project, repo domain.Repository) error {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return err
	}
	for i, r := range m.Repositories {
		if r.Alias == repo.Alias {
			m.Repositories[i] = repo
			return a.manifestLoader.Write(proj.ManifestPath, m)
		}
	}
	return zerr.With(domain.ErrRepositoryAliasNotFound, "alias", repo.Alias)
}

// ConfigureReplaceRepositories replaces the entire ordered repository list.
func (a *App) ConfigureReplaceRepositories(proj Project, repos []domain.Repository) error {
	m, err := a.loadManifest(proj.ManifestPath)
	if err != nil {
		return err
	}
	m.Repositories = repos
	return a.manifestLoader.Write(proj.ManifestPath, m)
}

// ConfigureClearRepositories empties the repository list.
func (a *App) ConfigureClearRepositories(proj Project) error {
	return a.ConfigureReplaceRepositories(proj, nil)
}
