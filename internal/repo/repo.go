// Package repo reads and changes the git repository jig runs in.
//
// Reads go through go-git. Checkout shells out to the git binary so that
// hooks, sparse checkouts and credential helpers behave as the user expects.
package repo

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/filesystem"

	jigerrors "github.com/Baarsgaard/jig/internal/errors"
)

// DetachedHead is reported by CurrentBranch when HEAD points at a commit.
const DetachedHead = "HEAD"

// Repository wraps a go-git repository opened from a working directory.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, walking up to find .git.
func Open(path string) (*Repository, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, jigerrors.Wrap(err, jigerrors.KindBranchState, "%s is not inside a git repository", path)
		}
		return nil, jigerrors.WrapInternal(err, "failed to open git repository at %s", path)
	}

	root := path
	if wt, err := r.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: r, root: root}, nil
}

// IsRepo reports whether path is inside a git repository.
func IsRepo(path string) bool {
	_, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Root returns the top level of the working tree.
func (r *Repository) Root() string {
	return r.root
}

// CurrentBranch returns the short name of the checked out branch. A detached
// HEAD yields DetachedHead. On an unborn branch the name HEAD points to is
// returned.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err == nil {
		if head.Name().IsBranch() {
			return head.Name().Short(), nil
		}
		return DetachedHead, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", jigerrors.Wrap(err, jigerrors.KindBranchState, "failed to resolve HEAD")
	}

	// No commits yet: HEAD is a symbolic ref to a branch that doesn't exist.
	sym, symErr := r.repo.Storer.Reference(plumbing.HEAD)
	if symErr != nil {
		return "", jigerrors.Wrap(symErr, jigerrors.KindBranchState, "failed to resolve HEAD")
	}
	if sym.Type() == plumbing.SymbolicReference && sym.Target().IsBranch() {
		return sym.Target().Short(), nil
	}
	return DetachedHead, nil
}

// DefaultRemote returns origin when it exists, otherwise the only configured
// remote. An empty string means no usable remote.
func (r *Repository) DefaultRemote() string {
	remotes, err := r.repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return ""
	}

	names := make([]string, 0, len(remotes))
	for _, rem := range remotes {
		name := rem.Config().Name
		if name == "origin" {
			return name
		}
		names = append(names, name)
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

// BranchExists reports whether name exists locally or on the default remote.
func (r *Repository) BranchExists(name string) bool {
	if _, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
		return true
	}

	remote := r.DefaultRemote()
	if remote == "" {
		return false
	}
	_, err := r.repo.Reference(plumbing.NewRemoteReferenceName(remote, name), true)
	return err == nil
}

// FirstExisting returns the first candidate branch that exists locally or on
// the default remote.
func (r *Repository) FirstExisting(candidates ...string) (string, bool) {
	for _, name := range candidates {
		if name != "" && r.BranchExists(name) {
			return name, true
		}
	}
	return "", false
}

// LocalBranches returns the names of all local branches, sorted.
func (r *Repository) LocalBranches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, jigerrors.WrapInternal(err, "failed to list branches")
	}

	var names []string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	sort.Strings(names)
	return names, nil
}

// Checkout switches to branch name, creating it from HEAD when create is set.
func (r *Repository) Checkout(ctx context.Context, name string, create bool) error {
	args := []string{"checkout"}
	if create {
		args = append(args, "-b")
	}
	args = append(args, name)

	if err := r.git(ctx, args...); err != nil {
		return jigerrors.Wrap(err, jigerrors.KindInternal, "failed to checkout branch %s", name)
	}
	return nil
}

// git runs the git binary in the working tree root.
func (r *Repository) git(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root

	output, err := cmd.CombinedOutput()
	if err != nil {
		out := strings.TrimSpace(string(output))
		if out == "" {
			out = err.Error()
		}
		return &GitError{Command: args[0], Output: out}
	}
	return nil
}

// gitDir returns the directory holding the repository's refs and config.
func (r *Repository) gitDir() string {
	if s, ok := r.repo.Storer.(*filesystem.Storage); ok {
		return s.Filesystem().Root()
	}
	return filepath.Join(r.root, ".git")
}

// GitError provides context for git command failures.
type GitError struct {
	Command string
	Output  string
}

func (e *GitError) Error() string {
	return "git " + e.Command + ": " + e.Output
}
