// Package classify holds the lexical predicates used to decide which
// reflow rule applies to a line. None of them parse Python; they look at
// leading whitespace, the comment marker and the block delimiter only.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// Marker starts a comment.
	Marker = "#"
	// Delimiter opens and closes a boxed block. Only the double-quote
	// style is recognized.
	Delimiter = `"""`
	// PrintCall is the token a disabled print statement starts with.
	PrintCall = "print("
	// FuncDef marks a disabled function signature, which is never boxed.
	FuncDef = "def "
)

// Kind is the classification of a single line.
type Kind int

const (
	Unchanged Kind = iota
	FullComment
	InlineComment
	BlockOpener
)

var kindNames = map[Kind]string{
	Unchanged:     "unchanged",
	FullComment:   "full-comment",
	InlineComment: "inline-comment",
	BlockOpener:   "block-opener",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Of classifies line. A block opener wins over a comment.
func Of(line string) Kind {
	switch {
	case IsBlockOpener(line):
		return BlockOpener
	case IsFullComment(line):
		return FullComment
	case HasInlineComment(line):
		return InlineComment
	}
	return Unchanged
}

// Width returns the length of line in characters.
func Width(line string) int {
	return utf8.RuneCountInString(line)
}

// Indent returns the number of leading whitespace characters of line.
func Indent(line string) int {
	return Width(IndentPrefix(line))
}

// IndentPrefix returns the leading whitespace of line.
func IndentPrefix(line string) string {
	for i, r := range line {
		if !unicode.IsSpace(r) {
			return line[:i]
		}
	}
	return line
}

// body returns line without its leading whitespace.
func body(line string) string {
	return line[len(IndentPrefix(line)):]
}

// IsFullComment reports whether the first non-whitespace character of
// line is the comment marker.
func IsFullComment(line string) bool {
	return strings.HasPrefix(body(line), Marker)
}

// IsCommentedPrint reports whether line is a full comment whose text,
// after the marker and any whitespace, starts with a print call.
func IsCommentedPrint(line string) bool {
	if !IsFullComment(line) {
		return false
	}
	return strings.HasPrefix(CommentText(line), PrintCall)
}

// HasInlineComment reports whether line carries a comment marker after
// some code.
func HasInlineComment(line string) bool {
	return strings.Contains(line, Marker) && !IsFullComment(line)
}

// IsBlockOpener reports whether line, after leading whitespace, begins
// with the block delimiter.
func IsBlockOpener(line string) bool {
	return strings.HasPrefix(body(line), Delimiter)
}

// CommentText returns the text following the first comment marker with
// leading whitespace removed, or "" when line has no marker.
func CommentText(line string) string {
	i := strings.Index(line, Marker)
	if i < 0 {
		return ""
	}
	return strings.TrimLeftFunc(line[i+len(Marker):], unicode.IsSpace)
}
