package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/unixthat/reflow-comments/internal/batch"
	"github.com/unixthat/reflow-comments/internal/config"
	"github.com/unixthat/reflow-comments/internal/format"
	"github.com/unixthat/reflow-comments/internal/reflow"
	"github.com/unixthat/reflow-comments/internal/repo"
	"github.com/unixthat/reflow-comments/internal/walk"
	"github.com/unixthat/reflow-comments/internal/wrap"
)

// app is the state shared by the commands once flags and config are
// resolved.
type app struct {
	cfg         *config.Config
	log         *zap.Logger
	w           Writer
	errw        io.Writer
	cwd         string
	verbose     bool
	changedOnly bool
	fs          billy.Filesystem
	// walkers caches a walker per repository root, "" outside any.
	walkers map[string]*walk.Walker
}

// filesystem returns the filesystem all paths are resolved against. It
// is rooted at "/" so files outside the working directory can be named.
func (a *app) filesystem() billy.Filesystem {
	if a.fs == nil {
		a.fs = osfs.New("/")
	}
	return a.fs
}

// fsPath converts an OS path to a path within the filesystem.
func (a *app) fsPath(p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(a.cwd, p)
	}
	p = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(p)), "/")
	if p == "" {
		return "."
	}
	return p
}

// osPath converts a filesystem path back to an absolute OS path.
func (a *app) osPath(p string) string {
	return filepath.Join(string(filepath.Separator), filepath.FromSlash(p))
}

// display returns the name shown for a filesystem path: relative to the
// working directory when it lies below it, absolute otherwise.
func (a *app) display(p string) string {
	abs := a.osPath(p)
	rel, err := filepath.Rel(a.cwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return rel
}

// formatter returns the configured formatter, or nil when it is disabled
// or missing. A missing formatter is reported once as a warning.
func (a *app) formatter() format.Service {
	b := a.cfg.Black()
	if b == nil {
		return nil
	}
	if err := b.Available(); err != nil {
		a.log.Warn("Formatter unavailable; commented-out prints will be treated as comments", zap.Error(err))
		fmt.Fprintf(a.errw, "warning: %s is not available in your PATH; install it (e.g. pip install black) or pass --no-format\n", b.Command)
		return nil
	}
	return b
}

// walker returns the file walker for dir, applying .gitignore rules from
// the repository around it when configured.
func (a *app) walker(dir string) (*walk.Walker, *repo.Repo) {
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		dir = filepath.Dir(dir)
	}
	r, err := repo.Find(dir)
	switch {
	case errors.Is(err, repo.ErrNotRepository):
		a.log.Debug("Not inside a git repository", zap.String("dir", dir))
		r = nil
	case err != nil:
		a.log.Warn("Could not open git repository", zap.Error(err))
		r = nil
	}
	root := ""
	if r != nil {
		root = r.Root
	}
	if w, ok := a.walkers[root]; ok {
		return w, r
	}

	opts := walk.Options{
		Extensions: a.cfg.Extensions,
		Exclude:    a.cfg.Exclude,
	}
	if r != nil && a.cfg.RespectGitignore {
		ignored, err := r.Ignored()
		if err != nil {
			a.log.Warn("Could not read .gitignore files", zap.Error(err))
		} else {
			opts.Ignore = func(p string, isDir bool) bool {
				return ignored(a.osPath(p), isDir)
			}
		}
	}
	w := walk.New(a.filesystem(), opts)
	if a.walkers == nil {
		a.walkers = make(map[string]*walk.Walker)
	}
	a.walkers[root] = w
	return w, r
}

// targets lists the files to process for the given command-line paths.
// Each path is filtered by the repository it lies in.
func (a *app) targets(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, arg := range args {
		w, r := a.walker(arg)
		var (
			files []string
			err   error
		)
		if a.changedOnly {
			files, err = a.changed(arg, w, r)
		} else {
			files, err = w.Expand(a.fsPath(arg))
		}
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// changed lists the modified files of r that lie at or below arg.
func (a *app) changed(arg string, w *walk.Walker, r *repo.Repo) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("--changed: %s: %w", arg, repo.ErrNotRepository)
	}
	changed, err := r.Changed()
	if err != nil {
		return nil, err
	}
	root := a.fsPath(arg)
	var out []string
	for _, c := range changed {
		p := a.fsPath(c)
		if w.Match(p) && (root == "." || p == root || strings.HasPrefix(p, root+"/")) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (a *app) runner(check bool) *batch.Runner {
	return batch.New(a.filesystem(), batch.Options{
		Engine: reflow.Options{
			Width:         a.cfg.Width,
			Formatter:     a.formatter(),
			GuardLiterals: a.cfg.GuardLiterals,
		},
		Check:   check,
		Display: a.display,
		Notify:  a.notify,
		Logger:  a.log,
	})
}

// notify prints a progress message. Per-rewrite details are shown only
// in verbose mode.
func (a *app) notify(m batch.Message) {
	if m.Detail && !a.verbose {
		return
	}
	if !m.Detail {
		fmt.Fprintln(a.w, wrap.Text(m.Text, a.w.Width()))
		return
	}
	a.w.Push(2)
	defer a.w.Pop()
	fmt.Fprintln(a.w, a.w.Style(wrap.Text(m.Text, a.w.Width()), Dim))
}

// reflow processes args, or the working directory when there are none.
// In check mode files are left untouched and the run fails if any would
// change.
func (a *app) reflow(ctx context.Context, args []string, check bool) error {
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := a.targets(args)
	if err != nil {
		return err
	}
	a.log.Debug("Targets resolved", zap.Int("files", len(files)))

	report, err := a.runner(check).Run(ctx, files)
	if err != nil {
		return err
	}
	a.summarize(report, check)

	if err := report.Err(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(a.errw, "error: %s\n", e)
		}
		return exitError{code: 1}
	}
	if check && report.ChangedFiles() > 0 {
		return exitError{code: 1}
	}
	return nil
}

func (a *app) summarize(report *batch.Report, check bool) {
	files, changed := len(report.Files), report.ChangedFiles()
	var malformed, skipped int
	for _, f := range report.Files {
		malformed += len(f.Malformed)
		skipped += len(f.Skipped)
	}

	switch {
	case check && changed > 0:
		fmt.Fprintln(a.w, a.w.Style(fmt.Sprintf("%d of %d file(s) would be reflowed (%d modification(s)).",
			changed, files, report.Modified()), Red))
	case changed > 0:
		fmt.Fprintln(a.w, a.w.Style(fmt.Sprintf("Reflowed %d of %d file(s) (%d modification(s)).",
			changed, files, report.Modified()), Green))
	default:
		fmt.Fprintf(a.w, "%d file(s) checked, nothing to reflow.\n", files)
	}
	if malformed > 0 {
		fmt.Fprintln(a.w, a.w.Style(fmt.Sprintf("%d unterminated triple-quoted block(s) left unchanged.", malformed), Yellow))
	}
	if skipped > 0 {
		fmt.Fprintln(a.w, a.w.Style(fmt.Sprintf("%d commented-out print(s) could not be formatted (run with --verbose for details).", skipped), Yellow))
	}
}
