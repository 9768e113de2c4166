// Package walk expands the paths given on the command line into the list
// of source files to process.
package walk

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// DefaultExtensions are the file extensions processed when none are
// configured.
var DefaultExtensions = []string{".py"}

type Options struct {
	// Extensions selects files found while walking directories. Files
	// named explicitly are always processed.
	Extensions []string
	// Exclude holds path.Match patterns tested against both the base
	// name and the full slash path of every file and directory.
	Exclude []string
	// Ignore, if set, reports paths to skip, for example from .gitignore.
	Ignore func(path string, isDir bool) bool
}

// Walker lists source files within a billy filesystem. Paths are
// slash-separated and relative to the filesystem root.
type Walker struct {
	fs   billy.Filesystem
	opts Options
}

func New(fs billy.Filesystem, opts Options) *Walker {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Walker{fs: fs, opts: opts}
}

// Expand returns the files named by paths: files as given, directories
// walked recursively. The result has no duplicates and keeps the order of
// paths; files within a directory are sorted.
func (w *Walker) Expand(paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		p = clean(p)
		fi, err := w.fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		switch {
		case fi.Mode().IsRegular():
			add(p)
		case fi.IsDir():
			files, err := w.walkDir(p)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		default:
			return nil, fmt.Errorf("%s is not a regular file or directory", p)
		}
	}
	return out, nil
}

// Match reports whether a file found by walking would be processed.
func (w *Walker) Match(p string) bool {
	p = clean(p)
	return w.hasExtension(p) && !w.skip(p, false)
}

// SkipDir reports whether the directory p is left out of walks.
func (w *Walker) SkipDir(p string) bool {
	p = clean(p)
	return path.Base(p) == ".git" || w.skip(p, true)
}

func (w *Walker) walkDir(root string) ([]string, error) {
	var files []string
	err := util.Walk(w.fs, root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		p = filepath.ToSlash(p)
		if fi.IsDir() {
			if p != root && w.SkipDir(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.Mode().IsRegular() && w.Match(p) {
			files = append(files, clean(p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func (w *Walker) hasExtension(p string) bool {
	ext := path.Ext(p)
	for _, e := range w.opts.Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func (w *Walker) skip(p string, isDir bool) bool {
	base := path.Base(p)
	for _, pat := range w.opts.Exclude {
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
	}
	return w.opts.Ignore != nil && w.opts.Ignore(p, isDir)
}

func clean(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	if p == "" {
		return "."
	}
	return p
}
