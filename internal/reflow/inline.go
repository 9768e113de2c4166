package reflow

import (
	"context"
	"strings"

	"github.com/unixthat/reflow-comments/internal/classify"
)

// InlineRule moves the trailing comment of an over-width code line onto
// its own line above the code. The two resulting lines are not examined
// again, even if one of them is still too long.
type InlineRule struct {
	Width int
}

func (r *InlineRule) Name() string { return RuleInline }

func (r *InlineRule) Apply(_ context.Context, lines []string, i int) (Match, bool, error) {
	line := lines[i]
	if classify.Width(line) <= r.Width || !classify.HasInlineComment(line) {
		return Match{}, false, nil
	}
	hash := strings.Index(line, classify.Marker)
	code := rtrim(line[:hash])
	comment := rtrim(classify.IndentPrefix(line) + classify.Marker + " " + classify.CommentText(line))
	return Match{Span: Span{i, i + 1}, Lines: []string{comment, code}}, true, nil
}
