// Package testutil holds helpers shared by tests that drive real git
// repositories or the built dotsync binary.
package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// FindProjectRoot walks up the directory tree from the caller's source file to find go.mod
func FindProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(1)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	return findRootFrom(filepath.Dir(filename))
}

// RequireGit skips the test when no git binary is available and pins the
// identity used for commits so tests do not depend on the user's gitconfig.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	t.Setenv("GIT_AUTHOR_NAME", "dotsync")
	t.Setenv("GIT_AUTHOR_EMAIL", "dotsync@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "dotsync")
	t.Setenv("GIT_COMMITTER_EMAIL", "dotsync@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
}

// BuildBinary compiles cmd/dotsync into a temp dir and returns its path
func BuildBinary(ctx context.Context, t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to get caller information")
	}
	root, err := findRootFrom(filepath.Dir(filename))
	if err != nil {
		t.Fatalf("get project root: %v", err)
	}

	bin := filepath.Join(t.TempDir(), "dotsync")
	cmd := exec.CommandContext(ctx, "go", "build", "-o", bin, "./cmd/dotsync")
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build: %v\n%s", err, out)
	}
	return bin
}

func findRootFrom(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
