package reflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/unixthat/reflow-comments/internal/classify"
	"github.com/unixthat/reflow-comments/internal/format"
)

var errEmptyFormat = errors.New("formatter returned no output")

// PrintRule boxes an over-width, commented-out print statement after
// running it through the formatter.
type PrintRule struct {
	Width     int
	Formatter format.Service
}

func (r *PrintRule) Name() string { return RulePrint }

func (r *PrintRule) Apply(ctx context.Context, lines []string, i int) (Match, bool, error) {
	line := lines[i]
	if r.Formatter == nil || classify.Width(line) <= r.Width || !classify.IsCommentedPrint(line) {
		return Match{}, false, nil
	}
	hash := strings.Index(line, classify.Marker)
	if classify.Width(line[:hash]) >= r.Width {
		return Match{}, false, nil
	}
	code := classify.CommentText(line)
	if strings.HasPrefix(code, classify.FuncDef) {
		return Match{}, false, nil
	}

	out, err := r.Formatter.Format(ctx, code, r.Width)
	if err != nil {
		return Match{}, false, fmt.Errorf("format line %d: %w", i+1, err)
	}
	body := formatted(out)
	if len(body) == 0 {
		return Match{}, false, fmt.Errorf("format line %d: %w", i+1, errEmptyFormat)
	}

	box := Box{Indent: classify.IndentPrefix(line), Body: body}
	return Match{Span: Span{i, i + 1}, Lines: box.Lines()}, true, nil
}

// formatted splits formatter output into right-trimmed, non-empty lines.
// A comment marker echoed at the start of the output is removed.
func formatted(out string) []string {
	out = strings.TrimRight(out, "\r\n")
	if strings.HasPrefix(out, classify.Marker) {
		out = strings.TrimLeftFunc(out[len(classify.Marker):], unicode.IsSpace)
	}
	var body []string
	for _, l := range strings.Split(out, "\n") {
		if l = rtrim(l); l != "" {
			body = append(body, l)
		}
	}
	return body
}
