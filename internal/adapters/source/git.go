package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"go.trai.ch/zerr"

	"go.rv.dev/rv/internal/core/domain"
	"go.rv.dev/rv/internal/core/ports"
)

// GitCache is the subset of ports.DiskCache the git handler uses to keep one
// persistent clone per repository URL across runs.
type GitCache interface {
	GitPath(url string) string
}

// GitHandler implements ports.SourceHandler for domain.SourceGit: it
// maintains one persistent clone per repository URL under the disk cache,
// fetching and checking out the requested branch, tag, or commit, and
// copies the (sub)tree into a staging directory per install.
type GitHandler struct {
	cache             GitCache
	recurseSubmodules bool
}

// NewGitHandler builds a GitHandler that recurses into submodules on clone
// and fetch. Use NewGitHandlerNoSubmodules to disable that (RV_SUBMODULE_UPDATE_DISABLE).
func NewGitHandler(cache GitCache) *GitHandler {
	return &GitHandler{cache: cache, recurseSubmodules: true}
}

// NewGitHandlerNoSubmodules builds a GitHandler that never updates
// submodules, for RV_SUBMODULE_UPDATE_DISABLE=1.
func NewGitHandlerNoSubmodules(cache GitCache) *GitHandler {
	return &GitHandler{cache: cache, recurseSubmodules: false}
}

// Kind reports domain.SourceGit.
func (h *GitHandler) Kind() domain.SourceKind { return domain.SourceGit }

// DescribeOnly clones or fetches just enough of the repository to read its
// DESCRIPTION-style metadata at the requested ref, without copying the tree
// into a staging directory.
func (h *GitHandler) DescribeOnly(ctx context.Context, node domain.ResolvedNode) (domain.PackageDescriptor, error) {
	if node.Git == nil {
		return domain.PackageDescriptor{}, zerr.With(domain.ErrDescriptorInvalidKind, "reason", "missing git source info")
	}

	checkoutPath, err := h.checkout(ctx, *node.Git)
	if err != nil {
		return domain.PackageDescriptor{}, err
	}

	return readDescription(filepath.Join(checkoutPath, node.Git.Subdirectory))
}

// Stage checks out the requested ref and copies the resulting (sub)tree
// into a fresh staging directory, ready for the install runner.
func (h *GitHandler) Stage(ctx context.Context, node domain.ResolvedNode) (ports.StagedSource, error) {
	if node.Git == nil {
		return ports.StagedSource{}, zerr.With(domain.ErrDescriptorInvalidKind, "reason", "missing git source info")
	}

	checkoutPath, err := h.checkout(ctx, *node.Git)
	if err != nil {
		return ports.StagedSource{}, err
	}

	src := filepath.Join(checkoutPath, node.Git.Subdirectory)
	dest, err := os.MkdirTemp(filepath.Dir(h.cache.GitPath(node.Git.URL)), "stage-*")
	if err != nil {
		return ports.StagedSource{}, zerr.Wrap(err, "create staging directory")
	}
	if err := copyTree(src, dest); err != nil {
		return ports.StagedSource{}, err
	}

	return ports.StagedSource{Path: dest}, nil
}

// checkout clones the repository into its cache slot if absent (or opens
// and fetches it if present), checks out ref, and returns the working tree
// path.
func (h *GitHandler) checkout(ctx context.Context, ref domain.GitSourceInfo) (string, error) {
	path := h.cache.GitPath(ref.URL)

	repo, err := git.PlainOpen(path)
	switch {
	case err == nil:
		wt, wtErr := repo.Worktree()
		if wtErr != nil {
			return "", zerr.Wrap(wtErr, "open git worktree")
		}
		fetchErr := repo.FetchContext(ctx, &git.FetchOptions{Force: true})
		if fetchErr != nil && !errors.Is(fetchErr, git.NoErrAlreadyUpToDate) {
			return "", zerr.Wrap(fetchErr, "fetch git remote")
		}
		if err := checkoutRef(wt, ref.Ref); err != nil {
			return "", err
		}
		if h.recurseSubmodules {
			if err := updateSubmodules(wt); err != nil {
				return "", err
			}
		}
		return path, nil

	case errors.Is(err, transport.ErrRepositoryNotFound), errors.Is(err, git.ErrRepositoryNotExists):
		cloneOpts := &git.CloneOptions{URL: ref.URL}
		if h.recurseSubmodules {
			cloneOpts.RecurseSubmodules = git.DefaultSubmoduleRecursionDepth
		}
		if ref.Ref.Kind == domain.GitRefBranch {
			cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(ref.Ref.Value)
			cloneOpts.SingleBranch = true
		} else if ref.Ref.Kind == domain.GitRefTag {
			cloneOpts.ReferenceName = plumbing.NewTagReferenceName(ref.Ref.Value)
			cloneOpts.SingleBranch = true
		}

		repo, cloneErr := git.PlainCloneContext(ctx, path, false, cloneOpts)
		if cloneErr != nil {
			return "", zerr.Wrap(domain.ErrGitRefUnresolved, cloneErr.Error())
		}
		wt, wtErr := repo.Worktree()
		if wtErr != nil {
			return "", zerr.Wrap(wtErr, "open git worktree")
		}
		if ref.Ref.Kind == domain.GitRefCommit {
			if err := checkoutRef(wt, ref.Ref); err != nil {
				return "", err
			}
		}
		return path, nil

	default:
		return "", zerr.Wrap(err, "open git cache")
	}
}

// updateSubmodules updates every submodule in wt after a fetch. go-git's
// CloneOptions.RecurseSubmodules only applies at clone time, so an existing
// clone's submodules need this explicit step on every subsequent fetch.
func updateSubmodules(wt *git.Worktree) error {
	submodules, err := wt.Submodules()
	if err != nil {
		return zerr.Wrap(err, "list git submodules")
	}
	if err := submodules.Update(&git.SubmoduleUpdateOptions{Init: true}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return zerr.Wrap(err, "update git submodules")
	}
	return nil
}

func checkoutRef(wt *git.Worktree, ref domain.GitRef) error {
	opts := &git.CheckoutOptions{}
	switch ref.Kind {
	case domain.GitRefBranch:
		opts.Branch = plumbing.NewBranchReferenceName(ref.Value)
	case domain.GitRefTag:
		opts.Branch = plumbing.NewTagReferenceName(ref.Value)
	case domain.GitRefCommit:
		opts.Hash = plumbing.NewHash(ref.Value)
	}
	if err := wt.Checkout(opts); err != nil {
		return zerr.Wrap(domain.ErrGitRefUnresolved, err.Error())
	}
	return nil
}

// copyTree recursively copies src into dest, skipping the .git directory.
func copyTree(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return zerr.Wrap(err, "read git checkout")
	}
	if err := os.MkdirAll(dest, 0o750); err != nil {
		return zerr.Wrap(err, "create staging directory")
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, destPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, destPath); err != nil {
			return zerr.Wrap(err, "copy git checkout file")
		}
	}
	return nil
}
