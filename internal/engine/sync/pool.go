// Package sync executes a domain.Plan: a bounded worker pool that stages,
// builds, and installs packages in dependency order, skipping the
// dependents of any install that fails, and removes packages the plan
// marked for removal. The scheduling shape is a generalization of a
// build-task worker pool to package installs: an in-degree map drives a
// ready queue, a fixed number of goroutines drain it, and a results channel
// feeds a single coordinating loop.
package sync

import (
	"context"
	"encoding/json"
	"os"

	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// Options configures one sync run.
type Options struct {
	Parallelism     int
	LibraryRoot     string
	LibraryOverride string
	EngineVersion   string
	Architecture    string
	CacheRoot       string
}

// Pool installs and removes packages according to a Plan. Archive caching
// and digest verification happen inside the SourceHandler each package's
// Source maps to (internal/adapters/diskcache is their collaborator, not
// the pool's); the pool only stages, builds, promotes, and removes.
type Pool struct {
	handlers map[domain.SourceKind]ports.SourceHandler
	runner   ports.InstallRunner
	library  ports.LibraryStore
	probe    ports.OpenFileProbe
	logger   ports.Logger
	hasher   ports.Hasher
	cache    ports.DiskCache
}

// New builds a Pool from its collaborators. hasher may be nil, in which case
// installed packages carry no fingerprint in their metadata sidecar and a
// later plan skips the fingerprint comparison for them.
// cache may be nil, in which case every install builds from source (§4.7
// step 2's cached-binary short-circuit is simply never taken).
func New(handlers map[domain.SourceKind]ports.SourceHandler, runner ports.InstallRunner, library ports.LibraryStore, probe ports.OpenFileProbe, logger ports.Logger, hasher ports.Hasher, cache ports.DiskCache) *Pool {
	return &Pool{handlers: handlers, runner: runner, library: library, probe: probe, logger: logger, hasher: hasher, cache: cache}
}

// unit is one schedulable piece of work: a single install, or a whole
// hard/linking cycle batch installed as one indivisible step (§4.6).
type unit struct {
	key     string
	names   []domain.PackageName
	actions []domain.Action
	inDeps  map[string]bool // external unit keys this unit's members depend on
}

type runState struct {
	units      map[string]*unit
	nameToUnit map[domain.PackageName]string
	inDegree   map[string]int
	dependents map[string][]string

	results chan unitResult
	active  int

	outcomes   []domain.Outcome
	failed     map[string]bool
	parallelism int
}

type unitResult struct {
	key      string
	outcomes []domain.Outcome
	err      error
}

// Run executes plan and returns a report of every package's outcome. Once
// the context is cancelled, every unit that starts afterwards reports its
// packages as failed with domain.ErrCancelled without doing any work, and
// the dependents of such a unit are recorded as skipped(failed_dependency);
// units already in flight finish and report their outcome.
func (p *Pool) Run(ctx context.Context, plan *domain.Plan, opts Options) (*domain.SyncReport, error) {
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	state := p.buildRunState(plan, parallelism)

	for _, a := range plan.Actions {
		switch a.Kind {
		case domain.ActionKeep:
			state.outcomes = append(state.outcomes, domain.Outcome{Name: a.Name, Kind: domain.OutcomeKept})
		case domain.ActionDependenciesOnly:
			state.outcomes = append(state.outcomes, domain.Outcome{Name: a.Name, Kind: domain.OutcomeDependenciesOnly})
		}
	}

	p.runLoop(ctx, state, opts)

	return &domain.SyncReport{Outcomes: state.outcomes}, nil
}

// buildRunState groups the plan's install/remove actions into units,
// computing the in-degree (number of other units each depends on) and the
// reverse dependents map used to propagate both completion and failure.
func (p *Pool) buildRunState(plan *domain.Plan, parallelism int) *runState {
	state := &runState{
		units:       make(map[string]*unit),
		nameToUnit:  make(map[domain.PackageName]string),
		inDegree:    make(map[string]int),
		dependents:  make(map[string][]string),
		failed:      make(map[string]bool),
		parallelism: parallelism,
	}

	seen := make(map[domain.PackageName]bool)
	for _, a := range plan.Actions {
		if a.Kind == domain.ActionKeep || a.Kind == domain.ActionDependenciesOnly || seen[a.Name] {
			continue
		}

		if len(a.CycleGroup) > 0 {
			key := a.CycleGroup[0].String()
			u, ok := state.units[key]
			if !ok {
				u = &unit{key: key, inDeps: make(map[string]bool)}
				state.units[key] = u
			}
			u.names = append(u.names, a.Name)
			u.actions = append(u.actions, a)
			state.nameToUnit[a.Name] = key
			seen[a.Name] = true
			continue
		}

		key := a.Name.String()
		state.units[key] = &unit{key: key, names: []domain.PackageName{a.Name}, actions: []domain.Action{a}, inDeps: make(map[string]bool)}
		state.nameToUnit[a.Name] = key
		seen[a.Name] = true
	}

	for key, u := range state.units {
		for _, a := range u.actions {
			if a.Kind != domain.ActionInstall {
				continue
			}
			for _, dep := range a.Node.Dependencies {
				depKey, ok := state.nameToUnit[dep]
				if !ok || depKey == key {
					continue
				}
				if !u.inDeps[depKey] {
					u.inDeps[depKey] = true
					state.dependents[depKey] = append(state.dependents[depKey], key)
				}
			}
		}
		state.inDegree[key] = len(u.inDeps)
	}

	state.results = make(chan unitResult, len(state.units)+1)
	return state
}

// runLoop is the scheduling loop: dispatch every zero-in-degree unit up to
// the parallelism cap, wait for a result, decrement dependents, and repeat
// until every unit has either run or been skipped.
func (p *Pool) runLoop(ctx context.Context, state *runState, opts Options) {
	ready := make([]string, 0, len(state.units))
	for key, deg := range state.inDegree {
		if deg == 0 {
			ready = append(ready, key)
		}
	}

	remaining := len(state.units)

	for remaining > 0 {
		for len(ready) > 0 && state.active < state.parallelism {
			key := ready[0]
			ready = ready[1:]
			state.active++

			u := state.units[key]
			go func() {
				outcomes, err := p.runUnit(ctx, u, opts)
				state.results <- unitResult{key: u.key, outcomes: outcomes, err: err}
			}()
		}

		if state.active == 0 {
			// No unit ready and none in flight with units still remaining
			// means every one of them was already skipped by a failure
			// propagation below; nothing left to schedule.
			break
		}

		res := <-state.results
		state.active--
		remaining--

		state.outcomes = append(state.outcomes, res.outcomes...)

		if res.err != nil {
			if p.logger != nil {
				p.logger.Warn("install failed: " + res.key)
			}
			state.failed[res.key] = true
			skipped, newlyRemaining := p.propagateFailure(state, res.key)
			state.outcomes = append(state.outcomes, skipped...)
			remaining -= newlyRemaining
			continue
		}

		for _, depKey := range state.dependents[res.key] {
			state.inDegree[depKey]--
			if state.inDegree[depKey] == 0 {
				ready = append(ready, depKey)
			}
		}
	}
}

// propagateFailure marks every transitive dependent of a failed unit as
// skipped(failed_dependency) and removes it from scheduling consideration,
// returning its outcomes and how many units were consumed this way.
func (p *Pool) propagateFailure(state *runState, failedKey string) ([]domain.Outcome, int) {
	var outcomes []domain.Outcome
	count := 0

	queue := []string{failedKey}
	visitedSkip := make(map[string]bool)

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]

		for _, depKey := range state.dependents[key] {
			if visitedSkip[depKey] || state.failed[depKey] {
				continue
			}
			visitedSkip[depKey] = true
			state.failed[depKey] = true
			count++

			u := state.units[depKey]
			for _, a := range u.actions {
				outcomes = append(outcomes, domain.Outcome{Name: a.Name, Kind: domain.OutcomeSkippedFailedDependency})
			}

			queue = append(queue, depKey)
		}
	}

	return outcomes, count
}

// runUnit stages, installs, and promotes every member of one unit (a single
// package, or an entire cycle batch) and returns the per-name outcomes.
func (p *Pool) runUnit(ctx context.Context, u *unit, opts Options) ([]domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		outcomes := make([]domain.Outcome, len(u.actions))
		for i, a := range u.actions {
			outcomes[i] = domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: domain.ErrCancelled}
		}
		return outcomes, domain.ErrCancelled
	}

	var outcomes []domain.Outcome
	var firstErr error

	for _, a := range u.actions {
		if a.Kind == domain.ActionRemove {
			outcome := p.runRemove(ctx, a, opts)
			outcomes = append(outcomes, outcome)
			if outcome.Err != nil && firstErr == nil {
				firstErr = outcome.Err
			}
			continue
		}

		outcome := p.runInstall(ctx, a, opts)
		outcomes = append(outcomes, outcome)
		if outcome.Err != nil && firstErr == nil {
			firstErr = outcome.Err
		}
	}

	return outcomes, firstErr
}

func (p *Pool) runInstall(ctx context.Context, a domain.Action, opts Options) domain.Outcome {
	logPath := domain.LogsPath(opts.CacheRoot, a.Name.String(), a.Node.Version.String())
	destDir := domain.StagingPath(opts.LibraryRoot, a.Name.String(), a.Node.Version.String())

	hit, err := p.stageFromBinaryCache(ctx, a, opts, destDir)
	if err != nil {
		return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err, LogPath: logPath}
	}

	if !hit {
		handler, ok := p.handlers[a.Node.Source]
		if !ok {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: domain.ErrBuildFailed}
		}

		staged, err := handler.Stage(ctx, a.Node)
		if err != nil {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err}
		}

		result, err := p.runner.Invoke(ctx, staged.Path, destDir, nil)
		if err != nil {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err, LogPath: logPath}
		}
		if result.ExitCode != 0 {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: domain.ErrBuildFailed, LogPath: logPath}
		}

		if err := os.MkdirAll(destDir, domain.DirPerm); err != nil {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: zerr.Wrap(err, "failed to prepare staged package directory"), LogPath: logPath}
		}

		p.saveBinaryCache(a, opts, destDir)
	}

	if err := p.writeInstalledMeta(destDir, a); err != nil {
		return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err, LogPath: logPath}
	}

	finalPath := domain.LibraryPackagePath(opts.LibraryRoot, opts.LibraryOverride, opts.EngineVersion, opts.Architecture, a.Name.String())
	if err := p.library.Promote(ctx, destDir, finalPath); err != nil {
		return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err, LogPath: logPath}
	}

	if p.logger != nil {
		p.logger.Info("installed " + a.Name.String() + " " + a.Node.Version.String())
	}
	return domain.Outcome{Name: a.Name, Kind: domain.OutcomeInstalled, LogPath: logPath}
}

// stageFromBinaryCache materializes a previously cached compiled result into
// destDir when one exists for this exact (name, version, engine, arch,
// digest) tuple and the node does not force a fresh build from source
// (§4.7 step 2). It reports whether it staged anything; a cache or
// materialize failure is treated as a miss rather than an install failure,
// falling back to a normal build.
func (p *Pool) stageFromBinaryCache(ctx context.Context, a domain.Action, opts Options, destDir string) (bool, error) {
	if p.cache == nil || a.Node.ForceSource || a.Node.Digest == "" {
		return false, nil
	}

	fingerprint := a.Node.Digest
	name, version := a.Name.String(), a.Node.Version.String()
	if !p.cache.HasBinary(opts.EngineVersion, opts.Architecture, name, version, fingerprint) {
		return false, nil
	}

	binPath := p.cache.BinaryPath(opts.EngineVersion, opts.Architecture, name, version, fingerprint)
	if _, err := p.cache.Materialize(ctx, binPath, destDir); err != nil {
		if p.logger != nil {
			p.logger.Warn("failed to reuse cached binary for " + name + ", rebuilding: " + err.Error())
		}
		return false, nil
	}
	return true, nil
}

// saveBinaryCache populates the binaries partition with a freshly built
// result so a later sync run can skip recompiling it (§4.7 step 2). A
// failure to cache is logged and otherwise ignored: the install itself
// already succeeded.
func (p *Pool) saveBinaryCache(a domain.Action, opts Options, destDir string) {
	if p.cache == nil || a.Node.Digest == "" {
		return
	}

	name, version := a.Name.String(), a.Node.Version.String()
	if err := p.cache.WriteBinary(opts.EngineVersion, opts.Architecture, name, version, a.Node.Digest, destDir); err != nil && p.logger != nil {
		p.logger.Warn("failed to cache compiled binary for " + name + ": " + err.Error())
	}
}

// writeInstalledMeta records the sidecar Promote's LibraryStore verifies
// before the rename, and Current later reads back to recover the source
// kind and fingerprint a bare DESCRIPTION file doesn't carry.
func (p *Pool) writeInstalledMeta(destDir string, a domain.Action) error {
	var fingerprint string
	if p.hasher != nil {
		fp, err := p.hasher.FingerprintTree(destDir)
		if err != nil {
			return zerr.Wrap(err, "failed to fingerprint staged package tree")
		}
		fingerprint = fp
	}

	meta := domain.InstalledMeta{
		Name:        a.Name.String(),
		Version:     a.Node.Version.String(),
		Source:      a.Node.Source,
		Fingerprint: fingerprint,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to encode installed metadata")
	}

	if err := os.WriteFile(domain.InstalledMetaPath(destDir), data, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write installed metadata")
	}
	return nil
}

func (p *Pool) runRemove(ctx context.Context, a domain.Action, opts Options) domain.Outcome {
	finalPath := domain.LibraryPackagePath(opts.LibraryRoot, opts.LibraryOverride, opts.EngineVersion, opts.Architecture, a.Name.String())

	if p.probe != nil {
		handles, err := p.probe.NamesInUse(finalPath)
		if err == nil && len(handles) > 0 {
			return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: domain.ErrPackageInUse}
		}
	}

	if err := p.library.Remove(ctx, finalPath); err != nil {
		return domain.Outcome{Name: a.Name, Kind: domain.OutcomeFailed, Err: err}
	}

	return domain.Outcome{Name: a.Name, Kind: domain.OutcomeRemoved}
}

