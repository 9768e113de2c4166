package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/unixthat/reflow-comments/internal/watch"
)

// watch reflows files below dir each time one is saved, until ctx is
// cancelled.
func (a *app) watch(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	wk, _ := a.walker(abs)
	runner := a.runner(false)

	w, err := watch.New(func(ctx context.Context, paths []string) error {
		files := make([]string, len(paths))
		for i, p := range paths {
			files[i] = a.fsPath(p)
		}
		report, err := runner.Run(ctx, files)
		if err != nil {
			return err
		}
		return report.Err()
	}, watch.Options{
		Match:   func(p string) bool { return wk.Match(a.fsPath(p)) },
		SkipDir: func(p string) bool { return wk.SkipDir(a.fsPath(p)) },
		Logger:  a.log,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(abs); err != nil {
		return err
	}
	a.log.Info("Watching for changes", zap.String("dir", abs))
	fmt.Fprintf(a.w, "Watching %s for changes (Ctrl-C to stop)\n", a.w.Style(a.display(a.fsPath(abs)), Bold))
	return w.Run(ctx)
}
