package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Env is a self-contained test environment with a real git repo.
type Env struct {
	T    *testing.T
	Dir  string
	Repo *git.Repository
}

// NewEnv creates a temp directory holding a git repo with one commit
// containing README.
func NewEnv(t *testing.T) *Env {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	e := &Env{T: t, Dir: dir, Repo: r}
	e.Write("README", "test\n")
	e.Commit("initial", "README")
	return e
}

// Path returns the absolute path of rel inside the repo.
func (e *Env) Path(rel string) string {
	return filepath.Join(e.Dir, filepath.FromSlash(rel))
}

// Write creates or overwrites rel with content, creating parent
// directories as needed.
func (e *Env) Write(rel, content string) {
	e.T.Helper()
	p := e.Path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		e.T.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		e.T.Fatal(err)
	}
}

// Read returns the content of rel.
func (e *Env) Read(rel string) string {
	e.T.Helper()
	data, err := os.ReadFile(e.Path(rel))
	if err != nil {
		e.T.Fatal(err)
	}
	return string(data)
}

// Commit stages the given paths and commits them.
func (e *Env) Commit(msg string, paths ...string) {
	e.T.Helper()
	wt, err := e.Repo.Worktree()
	if err != nil {
		e.T.Fatalf("Worktree: %v", err)
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			e.T.Fatalf("Add(%q): %v", p, err)
		}
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	if err != nil {
		e.T.Fatalf("Commit(%q): %v", msg, err)
	}
}

// Chdir switches into the repo for the rest of the test.
func (e *Env) Chdir() {
	e.T.Helper()
	prev, err := os.Getwd()
	if err != nil {
		e.T.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(e.Dir); err != nil {
		e.T.Fatalf("Chdir(%q): %v", e.Dir, err)
	}
	e.T.Cleanup(func() { _ = os.Chdir(prev) })
}
