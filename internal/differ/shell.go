package differ

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// Shell implements Differ by running diff -u -N and optionally piping the
// result through a colorizing pretty-printer
type Shell struct {
	Binary    string
	Colorizer string
}

// NewShell creates a differ using the diff binary on PATH
func NewShell() *Shell {
	return &Shell{Binary: "diff"}
}

// Diff runs the diff tool. Exit status 1 only means the files differ.
// Two missing files are equal and produce no output.
func (s *Shell) Diff(ctx context.Context, before, after string, w io.Writer) error {
	if missing(before) && missing(after) {
		return nil
	}

	args := []string{"-u", "-N", before, after}
	cmd := exec.CommandContext(ctx, s.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			code := -1
			if exitErr != nil {
				code = exitErr.ExitCode()
			}
			return &CommandError{
				Name:     s.Binary,
				Args:     args,
				ExitCode: code,
				Output:   strings.TrimSpace(stderr.String()),
				Err:      err,
			}
		}
	}

	if stdout.Len() == 0 {
		return nil
	}

	if s.Colorizer == "" {
		_, err := w.Write(stdout.Bytes())
		return err
	}

	color := exec.CommandContext(ctx, s.Colorizer)
	color.Stdin = &stdout
	color.Stdout = w
	var colorErr bytes.Buffer
	color.Stderr = &colorErr
	if err := color.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &CommandError{
			Name:     s.Colorizer,
			ExitCode: code,
			Output:   strings.TrimSpace(colorErr.String()),
			Err:      err,
		}
	}
	return nil
}

func missing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
