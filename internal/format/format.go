// Package format reformats a single Python statement with an external
// code formatter.
package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable is returned when the formatter binary cannot be found.
var ErrUnavailable = errors.New("formatter not available")

// Service turns source code into formatted source code no wider than
// width. Implementations must be safe to call once per statement.
type Service interface {
	Format(ctx context.Context, code string, width int) (string, error)
}

// Func adapts a plain function to a Service.
type Func func(ctx context.Context, code string, width int) (string, error)

func (f Func) Format(ctx context.Context, code string, width int) (string, error) {
	return f(ctx, code, width)
}

// Error describes a formatter run that exited unsuccessfully.
type Error struct {
	Command string
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Stderr, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultCommand is the formatter used when none is configured.
const DefaultCommand = "black"

// Black runs the black formatter, feeding code on stdin.
type Black struct {
	// Command is the executable, "black" when empty.
	Command string
	// Args are extra arguments placed before the line-length flag.
	Args []string
	// Timeout bounds one run. Zero means no limit.
	Timeout time.Duration
}

var _ Service = (*Black)(nil)

func (b *Black) command() string {
	if b.Command == "" {
		return DefaultCommand
	}
	return b.Command
}

// Available reports whether the formatter executable can be found.
func (b *Black) Available() error {
	if _, err := exec.LookPath(b.command()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, b.command(), err)
	}
	return nil
}

// Format pipes code through the formatter and returns its output.
func (b *Black) Format(ctx context.Context, code string, width int) (string, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}

	args := append([]string(nil), b.Args...)
	args = append(args, "--quiet", "--line-length", strconv.Itoa(width), "-")

	cmd := exec.CommandContext(ctx, b.command(), args...)
	cmd.Stdin = strings.NewReader(code + "\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", &Error{
			Command: b.command() + " " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return stdout.String(), nil
}
