// Package source reads a file as a sequence of lines and writes a
// rewritten sequence back in its place. Replacement goes through a
// temporary file in the same directory followed by a rename, so the
// original stays intact until the new content is complete.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrBinary is returned for files that contain NUL bytes.
var ErrBinary = errors.New("binary file")

const tempPrefix = ".reflow-"

// File is the content of one source file split into lines.
type File struct {
	Path  string
	Lines []string
	// EOL is the line terminator, "\n" or "\r\n", detected from the
	// first line.
	EOL string
	// FinalEOL is true when the last line ended with a terminator.
	FinalEOL bool
	Mode     os.FileMode
}

// Read loads path from fs and splits it into lines without terminators.
func Read(fs billy.Filesystem, p string) (*File, error) {
	fi, err := fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	data, err := util.ReadFile(fs, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	f.Path = p
	f.Mode = fi.Mode().Perm()
	return f, nil
}

// Parse splits data into lines. A file whose first line ends in "\r\n"
// is treated as CRLF throughout.
func Parse(data []byte) (*File, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrBinary
	}
	f := &File{EOL: "\n"}
	if len(data) == 0 {
		return f, nil
	}
	text := string(data)
	if i := strings.IndexByte(text, '\n'); i > 0 && text[i-1] == '\r' {
		f.EOL = "\r\n"
	}
	f.FinalEOL = strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	f.Lines = strings.Split(text, "\n")
	if f.EOL == "\r\n" {
		for i, l := range f.Lines {
			f.Lines[i] = strings.TrimSuffix(l, "\r")
		}
	}
	return f, nil
}

// Bytes renders the lines with the file's terminator.
func (f *File) Bytes() []byte {
	var b bytes.Buffer
	for i, l := range f.Lines {
		b.WriteString(l)
		if i < len(f.Lines)-1 || f.FinalEOL {
			b.WriteString(f.EOL)
		}
	}
	return b.Bytes()
}

// Replace writes f over f.Path. The content is written to a temporary
// file next to the target, flushed, given the original mode and renamed
// into place. On any failure the temporary file is removed and the
// original is left as it was.
func Replace(fs billy.Filesystem, f *File) error {
	tmp, err := util.TempFile(fs, path.Dir(f.Path), tempPrefix)
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", f.Path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}

	if _, err := tmp.Write(f.Bytes()); err != nil {
		return cleanup(err)
	}
	if s, ok := tmp.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return cleanup(err)
		}
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	if ch, ok := fs.(billy.Change); ok && f.Mode != 0 {
		_ = ch.Chmod(tmpPath, f.Mode)
	}
	if err := fs.Rename(tmpPath, f.Path); err != nil {
		_ = fs.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", f.Path, err)
	}
	return nil
}
