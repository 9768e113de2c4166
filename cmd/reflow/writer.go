package main

import (
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Style is an ANSI text attribute.
type Style int

const (
	Bold Style = iota
	Dim
	Red
	Yellow
	Green
)

var styleCodes = [...]string{
	Bold:   "\033[1m",
	Dim:    "\033[2m",
	Red:    "\033[31m",
	Yellow: "\033[33m",
	Green:  "\033[32m",
}

const reset = "\033[0m"

// Writer is the output of the commands: an io.Writer that indents every
// line by the current Push level and can style text for a terminal.
type Writer interface {
	io.Writer
	Style(s string, styles ...Style) string
	// Width is the room left on a line after the indent, or 0 when
	// output should not be wrapped.
	Width() int
	Push(n int)
	Pop()
}

type writer struct {
	out    io.Writer
	color  bool
	width  int
	levels []int
	indent string
	// midLine is set once part of a line has been written.
	midLine bool
}

func (w *writer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if !w.midLine && w.indent != "" {
			if _, err := io.WriteString(w.out, w.indent); err != nil {
				return total, err
			}
		}
		line, rest, nl := bytes.Cut(p, []byte{'\n'})
		if nl {
			line = p[:len(line)+1]
		}
		n, err := w.out.Write(line)
		total += n
		if err != nil {
			return total, err
		}
		w.midLine = !nl
		p = rest
	}
	return total, nil
}

func (w *writer) Style(s string, styles ...Style) string {
	if !w.color || len(styles) == 0 {
		return s
	}
	var b strings.Builder
	for _, st := range styles {
		if int(st) < len(styleCodes) {
			b.WriteString(styleCodes[st])
		}
	}
	return b.String() + s + reset
}

func (w *writer) Width() int {
	if w.width == 0 {
		return 0
	}
	return max(w.width-len(w.indent), 1)
}

func (w *writer) Push(n int) {
	w.levels = append(w.levels, n)
	w.indent += strings.Repeat(" ", n)
}

func (w *writer) Pop() {
	if len(w.levels) == 0 {
		return
	}
	n := w.levels[len(w.levels)-1]
	w.levels = w.levels[:len(w.levels)-1]
	w.indent = w.indent[:len(w.indent)-n]
}

// PlainWriter writes unstyled and unwrapped output.
func PlainWriter(out io.Writer) Writer {
	return &writer{out: out}
}

// ColorWriter styles output for a terminal width columns wide.
func ColorWriter(out io.Writer, width int) Writer {
	return &writer{out: out, color: true, width: width}
}

// newWriter picks a ColorWriter when out is a terminal and NO_COLOR is
// unset, and a PlainWriter otherwise.
func newWriter(out io.Writer) Writer {
	f, ok := out.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(f.Fd())) {
		return PlainWriter(out)
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 0
	}
	return ColorWriter(out, width)
}
