package reflow

import (
	"context"

	"github.com/unixthat/reflow-comments/internal/classify"
)

// MergeRule joins a run of full-line comments, starting at an over-width
// one, into a single wrapped block at the run's smallest indent.
type MergeRule struct {
	Width int
}

func (r *MergeRule) Name() string { return RuleMerge }

func (r *MergeRule) Apply(_ context.Context, lines []string, i int) (Match, bool, error) {
	if !classify.IsFullComment(lines[i]) || classify.Width(lines[i]) <= r.Width {
		return Match{}, false, nil
	}

	end, indent := i, classify.IndentPrefix(lines[i])
	var parts []string
	for ; end < len(lines) && classify.IsFullComment(lines[end]); end++ {
		if p := classify.IndentPrefix(lines[end]); classify.Width(p) < classify.Width(indent) {
			indent = p
		}
		parts = append(parts, classify.CommentText(lines[end]))
	}

	box := Box{
		Indent: indent,
		Body:   wrapBody(joinWords(parts), r.Width-classify.Width(indent)),
	}
	return Match{Span: Span{i, end}, Lines: box.Lines()}, true, nil
}
