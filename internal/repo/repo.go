// Package repo locates the git repository around a path and answers the
// two questions the reflow run asks of it: which files have changed, and
// which paths are ignored.
package repo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ErrNotRepository is returned when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

type Repo struct {
	Root string // absolute path of the work tree
	repo *git.Repository
	wt   *git.Worktree
}

// Find opens the repository containing dir, searching parent
// directories.
func Find(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", abs, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repo: %w", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Repo{Root: wt.Filesystem.Root(), repo: r, wt: wt}, nil
}

// Changed returns the absolute paths of files that are modified, added,
// renamed or untracked in the work tree or index. Deleted files are
// omitted. Paths are sorted.
func (r *Repo) Changed() ([]string, error) {
	status, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	var out []string
	for p, s := range status {
		if s.Worktree == git.Deleted || (s.Staging == git.Deleted && s.Worktree == git.Unmodified) {
			continue
		}
		if s.Worktree == git.Unmodified && s.Staging == git.Unmodified {
			continue
		}
		out = append(out, filepath.Join(r.Root, filepath.FromSlash(p)))
	}
	sort.Strings(out)
	return out, nil
}

// Ignored returns a predicate over absolute paths that applies every
// .gitignore file in the work tree.
func (r *Repo) Ignored() (func(path string, isDir bool) bool, error) {
	patterns, err := gitignore.ReadPatterns(r.wt.Filesystem, nil)
	if err != nil {
		return nil, fmt.Errorf("read ignore patterns: %w", err)
	}
	patterns = append(patterns, r.wt.Excludes...)
	m := gitignore.NewMatcher(patterns)
	return func(path string, isDir bool) bool {
		rel, err := filepath.Rel(r.Root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return false
		}
		return m.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
	}, nil
}
