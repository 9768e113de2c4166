// Package batch runs the reflow engine over a list of files, one at a
// time, writing back the ones that changed.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/unixthat/reflow-comments/internal/reflow"
	"github.com/unixthat/reflow-comments/internal/source"
)

// Message is a line of user-facing progress.
type Message struct {
	Path string
	Text string
	// Detail marks per-firing messages, shown only in verbose output.
	Detail bool
}

type Options struct {
	Engine reflow.Options
	// Check leaves files untouched and only reports what would change.
	Check bool
	// Display maps a filesystem path to the name shown in messages.
	Display func(path string) string
	// Notify receives progress messages. Nil drops them.
	Notify func(Message)
	Logger *zap.Logger
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path      string
	Modified  int
	Skipped   []reflow.Skip
	Malformed []int
	// Binary is set for files passed over because they hold NUL bytes.
	Binary bool
	Err    error
}

// Report collects the results of a run.
type Report struct {
	Files []FileResult
}

// Modified returns the total number of modifications across all files.
func (r *Report) Modified() int {
	n := 0
	for _, f := range r.Files {
		n += f.Modified
	}
	return n
}

// ChangedFiles returns the number of files with at least one
// modification.
func (r *Report) ChangedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Modified > 0 {
			n++
		}
	}
	return n
}

// Err combines the per-file errors, or returns nil if every file
// succeeded.
func (r *Report) Err() error {
	var err error
	for _, f := range r.Files {
		err = multierr.Append(err, f.Err)
	}
	return err
}

type Runner struct {
	fs   billy.Filesystem
	opts Options
	log  *zap.Logger
}

func New(fs billy.Filesystem, opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Display == nil {
		opts.Display = func(p string) string { return p }
	}
	return &Runner{fs: fs, opts: opts, log: log}
}

// Run processes paths in order. A failure on one file is recorded in the
// report and the run moves on; only cancellation of ctx stops it early,
// in which case the partial report is returned with ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	report := &Report{}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		fr, err := r.File(ctx, p)
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, fr)
	}
	return report, nil
}

// File processes a single file. The returned error is non-nil only when
// ctx is done; every other failure is carried in FileResult.Err.
func (r *Runner) File(ctx context.Context, p string) (FileResult, error) {
	fr := FileResult{Path: p}
	name := r.opts.Display(p)
	log := r.log.With(zap.String("path", name))

	f, err := source.Read(r.fs, p)
	if errors.Is(err, source.ErrBinary) {
		log.Warn("Skipping binary file")
		fr.Binary = true
		return fr, nil
	}
	if err != nil {
		log.Error("Read failed", zap.Error(err))
		fr.Err = err
		return fr, nil
	}

	eng := reflow.New(r.opts.Engine)
	eng.OnChange = func(c reflow.Change) {
		log.Debug("Rule fired",
			zap.String("rule", c.Rule),
			zap.Int("start", c.Span.Start+1),
			zap.Int("end", c.Span.End),
			zap.Bool("changed", c.Changed))
		if text := describe(name, c); text != "" {
			r.notify(Message{Path: p, Text: text, Detail: true})
		}
	}
	res, err := eng.Run(ctx, f.Lines)
	if err != nil {
		return fr, err
	}

	for _, s := range res.Skipped {
		log.Debug("Rule skipped", zap.String("rule", s.Rule), zap.Int("line", s.Line), zap.Error(s.Err))
	}
	for _, line := range res.Malformed {
		log.Warn("Unterminated triple-quoted block left unchanged", zap.Int("line", line))
	}
	fr.Skipped = res.Skipped
	fr.Malformed = res.Malformed
	fr.Modified = res.Modified()

	if fr.Modified > 0 && !r.opts.Check {
		f.Lines = res.Lines
		if err := source.Replace(r.fs, f); err != nil {
			log.Error("Write failed", zap.Error(err))
			fr.Err = err
			return fr, nil
		}
	}

	log.Info("File processed",
		zap.Int("changes", fr.Modified),
		zap.Int("skipped", len(fr.Skipped)),
		zap.Bool("check", r.opts.Check))

	verb := "Processed"
	if r.opts.Check {
		verb = "Checked"
	}
	r.notify(Message{
		Path:   p,
		Text:   fmt.Sprintf("%s %s: %d modification(s) made.", verb, name, fr.Modified),
		Detail: fr.Modified == 0,
	})
	return fr, nil
}

func (r *Runner) notify(m Message) {
	if r.opts.Notify != nil {
		r.opts.Notify(m)
	}
}

// describe returns the progress line for a rule firing, or "" for rules
// that only guard text from the others.
func describe(name string, c reflow.Change) string {
	switch c.Rule {
	case reflow.RuleBlock:
		return fmt.Sprintf("Processed triple-quoted block in %s (lines %d-%d).", name, c.Span.Start+1, c.Span.End)
	case reflow.RulePrint:
		return fmt.Sprintf("Modified commented-out print in %s at line %d.", name, c.Span.Start+1)
	case reflow.RuleInline:
		return fmt.Sprintf("Split inline comment in %s at line %d.", name, c.Span.Start+1)
	case reflow.RuleMerge:
		return fmt.Sprintf("Merged comment block in %s from line %d to %d.", name, c.Span.Start+1, c.Span.End)
	}
	return ""
}
