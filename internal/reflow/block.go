package reflow

import (
	"context"
	"strings"

	"github.com/unixthat/reflow-comments/internal/classify"
)

// BlockRule re-wraps an existing boxed block. The block runs from an
// opener line to the next line containing the delimiter; text around the
// delimiters on those two lines is part of the content.
type BlockRule struct {
	Width int
}

func (r *BlockRule) Name() string { return RuleBlock }

func (r *BlockRule) Apply(_ context.Context, lines []string, i int) (Match, bool, error) {
	line := lines[i]
	if !classify.IsBlockOpener(line) {
		return Match{}, false, nil
	}
	indent := classify.IndentPrefix(line)
	rest := line[len(indent)+len(classify.Delimiter):]

	var (
		parts  []string
		suffix string
		end    = -1
	)
	if k := strings.Index(rest, classify.Delimiter); k >= 0 {
		parts = append(parts, rest[:k])
		suffix, end = rest[k+len(classify.Delimiter):], i+1
	} else {
		parts = append(parts, rest)
		for j := i + 1; j < len(lines); j++ {
			k := strings.Index(lines[j], classify.Delimiter)
			if k < 0 {
				parts = append(parts, lines[j])
				continue
			}
			parts = append(parts, lines[j][:k])
			suffix, end = lines[j][k+len(classify.Delimiter):], j+1
			break
		}
	}
	if end < 0 {
		return Match{}, false, &MalformedBlockError{Line: i + 1}
	}

	box := Box{
		Indent: indent,
		Body:   wrapBody(joinWords(parts), r.Width-classify.Width(indent)),
		Suffix: suffix,
	}
	return Match{Span: Span{i, end}, Lines: box.Lines()}, true, nil
}

// LiteralRule passes a string literal opened after code, such as
// `x = """`, through untouched up to its closing delimiter, so that the
// closing line is not taken for a block opener.
type LiteralRule struct{}

func (LiteralRule) Name() string { return RuleLiteral }

func (LiteralRule) Apply(_ context.Context, lines []string, i int) (Match, bool, error) {
	line := lines[i]
	if classify.IsBlockOpener(line) || classify.IsFullComment(line) || !opensLiteral(line) {
		return Match{}, false, nil
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.Contains(lines[j], classify.Delimiter) {
			out := append([]string(nil), lines[i:j+1]...)
			return Match{Span: Span{i, j + 1}, Lines: out}, true, nil
		}
	}
	return Match{}, false, nil
}

// opensLiteral reports whether line ends inside a """ string. Quotes
// inside other strings and anything after a # outside strings are
// ignored.
func opensLiteral(line string) bool {
	quote := ""
	for i := 0; i < len(line); {
		rest := line[i:]
		if quote != "" {
			switch {
			case rest[0] == '\\':
				i += 2
			case strings.HasPrefix(rest, quote):
				i += len(quote)
				quote = ""
			default:
				i++
			}
			continue
		}
		switch {
		case rest[0] == '#':
			return false
		case strings.HasPrefix(rest, `"""`), strings.HasPrefix(rest, "'''"):
			quote = rest[:3]
			i += 3
		case rest[0] == '"', rest[0] == '\'':
			quote = rest[:1]
			i++
		default:
			i++
		}
	}
	return quote == classify.Delimiter
}
