//go:build integration

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schaermu/dotsync/internal/testutil"
)

const defaultTimeout = 5 * time.Minute

// Machine is one simulated host: a private HOME driven through the built binary
type Machine struct {
	t    *testing.T
	name string
	bin  string
	Home string
}

// NewMachine creates a machine with an empty home directory
func NewMachine(t *testing.T, name, bin string) *Machine {
	t.Helper()
	return &Machine{
		t:    t,
		name: name,
		bin:  bin,
		Home: t.TempDir(),
	}
}

// Root returns the default dotfiles root of the machine
func (m *Machine) Root() string {
	return filepath.Join(m.Home, ".dotfiles")
}

func (m *Machine) env() []string {
	env := append(os.Environ(),
		"HOME="+m.Home,
		"NO_COLOR=1",
	)
	return env
}

// Exec runs dotsync with args, feeding stdin to the process
func (m *Machine) Exec(ctx context.Context, stdin string, args ...string) (string, string, int, error) {
	m.t.Helper()

	cmd := exec.CommandContext(ctx, m.bin, args...)
	cmd.Dir = m.Home
	cmd.Env = m.env()
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, &testWriter{t: m.t, prefix: "[" + m.name + "] "})
	cmd.Stderr = io.MultiWriter(&stderr, &testWriter{t: m.t, prefix: "[" + m.name + " err] "})

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return "", "", 0, fmt.Errorf("exec failed: %w", err)
		}
	}

	return stdout.String(), stderr.String(), exitCode, nil
}

// MustExec runs dotsync and fails the test if it returns non-zero
func (m *Machine) MustExec(ctx context.Context, stdin string, args ...string) string {
	m.t.Helper()
	stdout, stderr, exitCode, err := m.Exec(ctx, stdin, args...)
	if err != nil {
		m.t.Fatalf("exec failed: %v", err)
	}
	if exitCode != 0 {
		m.t.Fatalf("dotsync %v failed with exit code %d\nstdout: %s\nstderr: %s",
			args, exitCode, stdout, stderr)
	}
	return stdout
}

// Git runs a plain git command, outside dotsync, in dir
func (m *Machine) Git(ctx context.Context, dir string, args ...string) string {
	m.t.Helper()
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = m.env()
	out, err := cmd.CombinedOutput()
	if err != nil {
		m.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// WriteFile writes a file relative to the machine's home
func (m *Machine) WriteFile(rel, content string) string {
	m.t.Helper()
	path := filepath.Join(m.Home, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		m.t.Fatalf("mkdir parent: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.t.Fatalf("write file: %v", err)
	}
	return path
}

// ReadFile reads a file relative to the machine's home
func (m *Machine) ReadFile(rel string) string {
	m.t.Helper()
	data, err := os.ReadFile(filepath.Join(m.Home, rel))
	if err != nil {
		m.t.Fatalf("read file: %v", err)
	}
	return string(data)
}

// FileExists checks if a file exists relative to the machine's home
func (m *Machine) FileExists(rel string) bool {
	m.t.Helper()
	info, err := os.Stat(filepath.Join(m.Home, rel))
	return err == nil && info.Mode().IsRegular()
}

// buildBinary compiles dotsync once per test
func buildBinary(ctx context.Context, t *testing.T) string {
	t.Helper()
	testutil.RequireGit(t)
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}
	return testutil.BuildBinary(ctx, t)
}

// testWriter wraps test logging for command output
type testWriter struct {
	t      *testing.T
	prefix string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if line != "" {
			w.t.Log(w.prefix + line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*testWriter)(nil)
