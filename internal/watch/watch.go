// Package watch re-runs a handler on source files as they are saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handler processes a batch of saved files. Paths are absolute and
// sorted.
type Handler func(ctx context.Context, paths []string) error

type Options struct {
	// Match selects the files whose events are handled.
	Match func(path string) bool
	// SkipDir reports directories that are not watched.
	SkipDir func(path string) bool
	// Debounce is how long a file must stay quiet before it is handled.
	Debounce time.Duration
	// Tick is how often pending files are checked.
	Tick   time.Duration
	Logger *zap.Logger
}

// Watcher watches directory trees and feeds quiet files to a Handler one
// batch at a time.
type Watcher struct {
	fsw     *fsnotify.Watcher
	opts    Options
	log     *zap.Logger
	handler Handler

	mu      sync.Mutex
	pending map[string]time.Time
	// handled holds each file's state as the handler left it, so events
	// caused by the handler's own writes can be dropped.
	handled map[string]stamp
}

type stamp struct {
	mod  time.Time
	size int64
}

func stat(p string) (stamp, bool) {
	fi, err := os.Stat(p)
	if err != nil {
		return stamp{}, false
	}
	return stamp{mod: fi.ModTime(), size: fi.Size()}, true
}

func New(h Handler, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if opts.SkipDir == nil {
		opts.SkipDir = func(string) bool { return false }
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		fsw:     fsw,
		opts:    opts,
		log:     log,
		handler: h,
		pending: make(map[string]time.Time),
		handled: make(map[string]stamp),
	}, nil
}

// Add watches root and every directory below it that SkipDir allows.
func (w *Watcher) Add(root string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (d.Name() == ".git" || w.opts.SkipDir(p)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		w.log.Debug("Watching directory", zap.String("dir", p))
		return nil
	})
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers events until ctx is done. It returns nil on cancellation
// and an error if the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.events(gctx) })
	g.Go(func() error { return w.flush(gctx) })
	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (w *Watcher) events(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.log.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				w.log.Warn("Failed to watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return
		}
	}
	if !w.opts.Match(ev.Name) {
		return
	}
	w.log.Debug("File event", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			due := w.due(time.Now())
			if len(due) == 0 {
				continue
			}
			err := w.handler(ctx, due)
			w.record(due)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Error("Handler failed", zap.Strings("files", due), zap.Error(err))
			}
		}
	}
}

// record stamps paths as the handler left them.
func (w *Watcher) record(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		if st, ok := stat(p); ok {
			w.handled[p] = st
		} else {
			delete(w.handled, p)
		}
	}
}

// due removes and returns the pending files that have been quiet for at
// least the debounce interval. Files unchanged since the handler last
// saw them are dropped.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for p, t := range w.pending {
		if now.Sub(t) < w.opts.Debounce {
			continue
		}
		delete(w.pending, p)
		if last, ok := w.handled[p]; ok {
			if st, ok := stat(p); ok && st.size == last.size && st.mod.Equal(last.mod) {
				w.log.Debug("Ignoring own write", zap.String("file", p))
				continue
			}
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
