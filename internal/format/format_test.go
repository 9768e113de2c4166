package format

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// script writes an executable shell script into a temp dir.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fakefmt")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBlack_PipesCodeThroughCommand(t *testing.T) {
	b := &Black{Command: script(t, "tr a-z A-Z")}
	got, err := b.Format(context.Background(), `print("hi")`, 79)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if want := "PRINT(\"HI\")\n"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestBlack_PassesLineLength(t *testing.T) {
	b := &Black{Command: script(t, `echo "$@"`), Args: []string{"--fast"}}
	got, err := b.Format(context.Background(), "x", 42)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if want := "--fast --quiet --line-length 42 -"; strings.TrimSpace(got) != want {
		t.Errorf("args = %q, want %q", strings.TrimSpace(got), want)
	}
}

func TestBlack_NonZeroExit(t *testing.T) {
	b := &Black{Command: script(t, "echo 'cannot parse' >&2; exit 123")}
	_, err := b.Format(context.Background(), "print(", 79)
	var ferr *Error
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ferr.Stderr != "cannot parse" {
		t.Errorf("Stderr = %q, want %q", ferr.Stderr, "cannot parse")
	}
}

func TestBlack_Missing(t *testing.T) {
	b := &Black{Command: filepath.Join(t.TempDir(), "no-such-formatter")}
	if err := b.Available(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Available() = %v, want ErrUnavailable", err)
	}
	_, err := b.Format(context.Background(), "x", 79)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Format err = %v, want ErrUnavailable", err)
	}
}

func TestBlack_Timeout(t *testing.T) {
	b := &Black{Command: script(t, "exec sleep 5"), Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := b.Format(context.Background(), "x", 79)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("Format took %v, timeout not applied", elapsed)
	}
}

func TestFunc(t *testing.T) {
	var calls int
	f := Func(func(_ context.Context, code string, width int) (string, error) {
		calls++
		return strings.Repeat("=", width) + code, nil
	})
	got, err := f.Format(context.Background(), "x", 3)
	if err != nil || got != "===x" || calls != 1 {
		t.Errorf("Func.Format = %q, %v (calls %d)", got, err, calls)
	}
}
