package library

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/teranos/libref/errors"
)

// Revision identifies the commit a library checkout is at.
type Revision struct {
	Hash string
	// Root is the top of the git worktree containing the library.
	Root string
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Hash) > 12 {
		return r.Hash[:12]
	}
	return r.Hash
}

// RepoPath returns path relative to the worktree root, with forward slashes.
func (r Revision) RepoPath(path string) string {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// ReadRevision opens the git repository containing dir (searching parent
// directories) and returns its HEAD commit.
func ReadRevision(dir string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Revision{}, errors.Wrapf(err, "open git repository at %s", dir)
	}
	head, err := repo.Head()
	if err != nil {
		return Revision{}, errors.Wrap(err, "read HEAD")
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Revision{}, errors.Wrap(err, "open worktree")
	}
	return Revision{
		Hash: head.Hash().String(),
		Root: wt.Filesystem.Root(),
	}, nil
}
