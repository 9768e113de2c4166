package reflow

import (
	"context"
	"errors"
	"slices"

	"github.com/unixthat/reflow-comments/internal/format"
)

// Options configures the default rule list.
type Options struct {
	// Width is the maximum line length. DefaultWidth when zero.
	Width int
	// Formatter reformats disabled print statements. When nil the print
	// rule never fires.
	Formatter format.Service
	// GuardLiterals passes string literals opened after code through
	// unchanged.
	GuardLiterals bool
}

// Rules returns the rule list in precedence order: existing blocks,
// disabled prints, inline comments, comment runs.
func Rules(opts Options) []Rule {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	var rules []Rule
	if opts.GuardLiterals {
		rules = append(rules, LiteralRule{})
	}
	return append(rules,
		&BlockRule{Width: width},
		&PrintRule{Width: width, Formatter: opts.Formatter},
		&InlineRule{Width: width},
		&MergeRule{Width: width},
	)
}

// Change records one rule firing.
type Change struct {
	Rule string
	Span Span
	// Changed is false when the rule reproduced its input exactly.
	Changed bool
}

// Skip records a rule that declined to fire because of an error, such as
// a formatter failure.
type Skip struct {
	Line int // 1-based
	Rule string
	Err  error
}

// Result is the outcome of one pass over a file.
type Result struct {
	Lines   []string
	Changes []Change
	Skipped []Skip
	// Malformed lists the 1-based lines of block openers that are never
	// closed. Those blocks are left as they are.
	Malformed []int
}

// Modified returns the number of firings that altered the text.
func (r Result) Modified() int {
	n := 0
	for _, c := range r.Changes {
		if c.Changed {
			n++
		}
	}
	return n
}

// Engine applies an ordered rule list to the lines of a file.
type Engine struct {
	Rules []Rule
	// OnChange, if set, is called for every firing.
	OnChange func(Change)
}

// New returns an Engine with the default rule list.
func New(opts Options) *Engine {
	return &Engine{Rules: Rules(opts)}
}

// Run scans lines once and returns the rewritten file. The input slice
// is not modified. Run stops early only when ctx is done.
func (e *Engine) Run(ctx context.Context, lines []string) (Result, error) {
	res := Result{Lines: make([]string, 0, len(lines))}
	for i := 0; i < len(lines); {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		m, rule, err := e.match(ctx, lines, i, &res)
		if err != nil {
			return res, err
		}
		if rule == "" {
			res.Lines = append(res.Lines, lines[i])
			i++
			continue
		}
		c := Change{
			Rule:    rule,
			Span:    m.Span,
			Changed: !slices.Equal(lines[m.Span.Start:m.Span.End], m.Lines),
		}
		res.Changes = append(res.Changes, c)
		if e.OnChange != nil {
			e.OnChange(c)
		}
		res.Lines = append(res.Lines, m.Lines...)
		i = m.Span.End
	}
	return res, nil
}

// match returns the first rule that fires at i. An empty rule name means
// no rule fired. Rule errors are recorded on res, except cancellation,
// which is returned.
func (e *Engine) match(ctx context.Context, lines []string, i int, res *Result) (Match, string, error) {
	for _, r := range e.Rules {
		m, ok, err := r.Apply(ctx, lines, i)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Match{}, "", ctxErr
			}
			var mb *MalformedBlockError
			if errors.As(err, &mb) {
				res.Malformed = append(res.Malformed, mb.Line)
			} else {
				res.Skipped = append(res.Skipped, Skip{Line: i + 1, Rule: r.Name(), Err: err})
			}
			continue
		}
		if ok && m.Span.End > m.Span.Start {
			return m, r.Name(), nil
		}
	}
	return Match{}, "", nil
}
