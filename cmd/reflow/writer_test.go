package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestPlainWriterStyle(t *testing.T) {
	var buf bytes.Buffer
	w := PlainWriter(&buf)

	got := w.Style("hello", Bold, Red)
	if got != "hello" {
		t.Errorf("PlainWriter.Style() = %q, want %q", got, "hello")
	}
}

func TestColorWriterStyle(t *testing.T) {
	var buf bytes.Buffer
	w := ColorWriter(&buf, 80)

	got := w.Style("hello", Red)
	want := "\033[31mhello\033[0m"
	if got != want {
		t.Errorf("ColorWriter.Style(Red) = %q, want %q", got, want)
	}
}

func TestColorWriterStyleMultiple(t *testing.T) {
	var buf bytes.Buffer
	w := ColorWriter(&buf, 80)

	got := w.Style("hello", Bold, Green)
	if !strings.HasPrefix(got, "\033[1m\033[32m") {
		t.Errorf("ColorWriter.Style(Bold, Green) = %q, want prefix \\033[1m\\033[32m", got)
	}
	if !strings.HasSuffix(got, "\033[0m") {
		t.Errorf("ColorWriter.Style(Bold, Green) = %q, want suffix \\033[0m", got)
	}
}

func TestColorWriterStyleNoArgs(t *testing.T) {
	var buf bytes.Buffer
	w := ColorWriter(&buf, 80)

	got := w.Style("hello")
	if got != "hello" {
		t.Errorf("ColorWriter.Style() with no styles = %q, want %q", got, "hello")
	}
}

func TestWriterIndent(t *testing.T) {
	var buf bytes.Buffer
	w := PlainWriter(&buf)

	fmt.Fprintln(w, "file.py")
	w.Push(2)
	fmt.Fprintln(w, "first")
	fmt.Fprint(w, "second\nthird\n")
	w.Pop()
	fmt.Fprintln(w, "done")

	want := "file.py\n  first\n  second\n  third\ndone\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriterWidth(t *testing.T) {
	var buf bytes.Buffer
	if got := PlainWriter(&buf).Width(); got != 0 {
		t.Errorf("PlainWriter.Width() = %d, want 0", got)
	}

	w := ColorWriter(&buf, 40)
	w.Push(4)
	if got := w.Width(); got != 36 {
		t.Errorf("Width() after Push(4) = %d, want 36", got)
	}
	w.Push(100)
	if got := w.Width(); got != 1 {
		t.Errorf("Width() past the edge = %d, want 1", got)
	}
}

func TestNewWriterNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	w := newWriter(&buf)
	if got := w.Style("x", Red); got != "x" {
		t.Errorf("newWriter on a buffer styled output: %q", got)
	}
}

func TestWriterNestedIndent(t *testing.T) {
	var buf bytes.Buffer
	w := PlainWriter(&buf)

	w.Push(2)
	w.Push(3)
	fmt.Fprint(w, "deep")
	fmt.Fprintln(w, " still")
	w.Pop()
	fmt.Fprintln(w, "back")
	w.Pop()
	w.Pop()
	fmt.Fprintln(w, "top")

	want := "     deep still\n  back\ntop\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
