// Package wrap provides greedy line-wrapping that prefers to break at
// spaces and punctuation.
package wrap

import (
	"strings"
	"unicode"
)

// Breakable lists the characters a line may be broken at, in the order
// they are documented. Spaces are consumed by the break; punctuation
// stays at the end of the line it terminates.
const Breakable = " ,.:;"

// lookahead bounds the forward scan used when no break point exists at
// or before the width.
const lookahead = 10

// Lines wraps text, which must not contain newlines, into lines of at
// most width characters. It scans backward from the width for the
// nearest break point, then forward a few characters, and only then
// splits a token at exactly width. Lines produced by the forward scan
// may exceed width by fewer than ten characters.
//
// Empty text yields a single empty line. A width below one is treated
// as one.
func Lines(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	rs := []rune(text)
	var out []string
	for len(rs) > width {
		end := breakAt(rs, width)
		out = append(out, string(rs[:end]))
		rs = rs[skipSpace(rs, end):]
	}
	if len(rs) == 0 && len(out) > 0 {
		return out
	}
	return append(out, string(rs))
}

// Text wraps s to fit within the given width. It preserves existing
// line breaks and the leading whitespace of each input line, keeping
// that indent on continuation lines.
//
// A width of zero or less disables wrapping and returns s unchanged.
func Text(s string, width int) string {
	if width <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	var out strings.Builder

	for i, line := range lines {
		if i > 0 {
			out.WriteByte('\n')
		}

		// Preserve blank lines.
		if line == "" {
			continue
		}

		indent := leadingWhitespace(line)
		body := strings.TrimRightFunc(line[len(indent):], unicode.IsSpace)
		if body == "" {
			out.WriteString(line)
			continue
		}

		avail := width - visibleLen(indent)
		for j, seg := range Lines(body, avail) {
			if j > 0 {
				out.WriteByte('\n')
			}
			out.WriteString(indent)
			out.WriteString(seg)
		}
	}

	return out.String()
}

// breakAt returns the exclusive end of the first line of rs, which is
// known to be longer than width.
func breakAt(rs []rune, width int) int {
	for i := width; i >= 0; i-- {
		if end, ok := lineEnd(rs[i], i); ok && end >= 1 && end <= width {
			return end
		}
	}
	for i := width + 1; i < len(rs) && i < width+lookahead; i++ {
		if end, ok := lineEnd(rs[i], i); ok {
			return end
		}
	}
	return width
}

// lineEnd reports where a line broken at the character r (found at
// index i) ends.
func lineEnd(r rune, i int) (int, bool) {
	switch {
	case r == ' ':
		return i, true
	case strings.ContainsRune(Breakable, r):
		return i + 1, true
	}
	return 0, false
}

// skipSpace returns the index of the first non-whitespace rune at or
// after i.
func skipSpace(rs []rune, i int) int {
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	return i
}

// leadingWhitespace returns the leading whitespace prefix of s.
func leadingWhitespace(s string) string {
	for i, r := range s {
		if !unicode.IsSpace(r) {
			return s[:i]
		}
	}
	return s
}

// visibleLen returns the number of rune positions in s.
func visibleLen(s string) int {
	return len([]rune(s))
}
