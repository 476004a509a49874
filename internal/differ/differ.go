// Package differ renders unified diffs between a stored blob and its system
// file. Either side may be missing; a missing file is treated as empty so
// the whole of the other side shows as added or removed.
package differ

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/schaermu/dotsync/internal/config"
	derrors "github.com/schaermu/dotsync/internal/errors"
)

// Differ writes a unified diff of before → after to w
type Differ interface {
	Diff(ctx context.Context, before, after string, w io.Writer) error
}

// CommandError reports a diff or colorizer process that failed
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying exec error
func (e *CommandError) Unwrap() []error {
	return []error{derrors.ErrSubprocessFailure, e.Err}
}

// New selects a Differ for cfg. In auto mode the diff binary is used when it
// is on PATH, otherwise the builtin renderer. The colorizer is only used
// when color output is enabled and the binary exists.
func New(cfg config.DiffConfig, color bool) Differ {
	useShell := false
	switch cfg.Tool {
	case config.DiffShell:
		useShell = true
	case config.DiffBuiltin:
		useShell = false
	default:
		_, err := exec.LookPath("diff")
		useShell = err == nil
	}

	if !useShell {
		return &Builtin{Color: color}
	}

	shell := NewShell()
	if color && cfg.Colorizer != "" {
		if _, err := exec.LookPath(cfg.Colorizer); err == nil {
			shell.Colorizer = cfg.Colorizer
		}
	}
	return shell
}
