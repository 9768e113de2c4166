// Package reflow rewrites the comments of a Python source file so that
// they fit a fixed width. A file is scanned once; at each position an
// ordered list of rules is consulted and the first that matches replaces
// the lines it consumed.
package reflow

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/unixthat/reflow-comments/internal/classify"
	"github.com/unixthat/reflow-comments/internal/wrap"
)

// DefaultWidth is the maximum line length enforced for rewritten lines.
const DefaultWidth = 79

// Rule names, as reported in a Change.
const (
	RuleLiteral = "literal"
	RuleBlock   = "block"
	RulePrint   = "print"
	RuleInline  = "inline"
	RuleMerge   = "merge"
)

// Span is the half-open range [Start, End) of line indexes consumed by a
// rule. End is always greater than Start.
type Span struct {
	Start int
	End   int
}

// Len returns the number of lines in the span.
func (s Span) Len() int { return s.End - s.Start }

// Match is the replacement a rule produces for the lines in Span.
type Match struct {
	Span  Span
	Lines []string
}

// Rule inspects the line at index i. It reports false when its
// preconditions do not hold. A non-nil error also means the rule did not
// fire; the engine records it and moves on to the next rule.
type Rule interface {
	Name() string
	Apply(ctx context.Context, lines []string, i int) (Match, bool, error)
}

// MalformedBlockError reports a block opener with no closing delimiter
// before the end of the file.
type MalformedBlockError struct {
	Line int // 1-based line of the opener
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("line %d: block opened with %s is never closed", e.Line, classify.Delimiter)
}

// Box is a reconstructed comment block: the delimiter, the body, and the
// delimiter again, all at the same indent. Suffix is any text that
// followed the closing delimiter in the source.
type Box struct {
	Indent string
	Body   []string
	Suffix string
}

// Lines renders the block. Trailing whitespace is removed from every
// line.
func (b Box) Lines() []string {
	out := make([]string, 0, len(b.Body)+2)
	out = append(out, b.Indent+classify.Delimiter)
	for _, l := range b.Body {
		out = append(out, rtrim(b.Indent+l))
	}
	return append(out, rtrim(b.Indent+classify.Delimiter+b.Suffix))
}

// wrapBody wraps text to avail columns for use as a Box body. Empty text
// yields an empty body.
func wrapBody(text string, avail int) []string {
	if text == "" {
		return nil
	}
	if avail < 1 {
		avail = 1
	}
	lines := wrap.Lines(text, avail)
	lines[0] = strings.TrimLeftFunc(lines[0], unicode.IsSpace)
	for i := range lines {
		lines[i] = rtrim(lines[i])
	}
	return lines
}

// joinWords joins fragments with single spaces, collapsing any run of
// whitespace inside or between them.
func joinWords(fragments []string) string {
	return strings.Join(strings.Fields(strings.Join(fragments, " ")), " ")
}

func rtrim(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
