package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	derrors "github.com/schaermu/dotsync/internal/errors"
)

// Client provides git operations on the dotfiles working tree
type Client interface {
	// Init creates the repository if it does not exist yet
	Init(ctx context.Context) error
	// AddAll stages every change in the working tree
	AddAll(ctx context.Context) error
	// Commit records staged changes with message
	Commit(ctx context.Context, message string) error
	// Push sends local commits to the configured remote
	Push(ctx context.Context) error
	// Pull fetches and merges remote commits
	Pull(ctx context.Context) error
	// Run executes an arbitrary git command
	Run(ctx context.Context, args ...string) error
}

// CommandError reports a git invocation that did not exit cleanly
type CommandError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("git %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

// Unwrap exposes both the sentinel and the underlying exec error
func (e *CommandError) Unwrap() []error {
	return []error{derrors.ErrSubprocessFailure, e.Err}
}

// ExitCode returns the exit status carried by err, or 1 when err is not a
// git exit status.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return cmdErr.ExitCode
	}
	return 1
}

// ShellClient implements Client by shelling out to the git command with the
// dotfiles root as working directory. Standard streams are passed through so
// git can prompt for credentials and report progress.
type ShellClient struct {
	dir            string
	sshKeyFile     string
	httpsTokenFile string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellClient creates a new git client operating in dir
func NewShellClient(dir, sshKeyFile, httpsTokenFile string) *ShellClient {
	return &ShellClient{
		dir:            dir,
		sshKeyFile:     sshKeyFile,
		httpsTokenFile: httpsTokenFile,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}
}

// Init runs git init
func (c *ShellClient) Init(ctx context.Context) error {
	return c.Run(ctx, "init")
}

// AddAll runs git add -A
func (c *ShellClient) AddAll(ctx context.Context) error {
	return c.Run(ctx, "add", "-A")
}

// Commit runs git commit -m message
func (c *ShellClient) Commit(ctx context.Context, message string) error {
	return c.Run(ctx, "commit", "-m", message)
}

// Push runs git push with the configured credentials
func (c *ShellClient) Push(ctx context.Context) error {
	return c.runRemote(ctx, "push")
}

// Pull runs git pull with the configured credentials
func (c *ShellClient) Pull(ctx context.Context) error {
	return c.runRemote(ctx, "pull")
}

// Run executes git with args in the dotfiles root
func (c *ShellClient) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	return c.runCommand(cmd, args)
}

func (c *ShellClient) runRemote(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if err := c.configureAuth(cmd); err != nil {
		return err
	}
	return c.runCommand(cmd, args)
}

// configureAuth sets up authentication for remote operations
func (c *ShellClient) configureAuth(cmd *exec.Cmd) error {
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	// SSH authentication
	if c.sshKeyFile != "" {
		// The path is shell-quoted to prevent injection via crafted filenames.
		sshCmd := fmt.Sprintf("ssh -i %s -o StrictHostKeyChecking=accept-new", shellQuote(c.sshKeyFile))
		cmd.Env = append(cmd.Env, "GIT_SSH_COMMAND="+sshCmd)
		return nil
	}

	// HTTPS authentication with token
	if c.httpsTokenFile != "" {
		token, err := os.ReadFile(c.httpsTokenFile)
		if err != nil {
			return fmt.Errorf("failed to read HTTPS token file: %w", err)
		}

		// Pass the token via environment variable and configure a git
		// credential helper that reads it.
		cmd.Env = append(cmd.Env, "GIT_TERMINAL_PROMPT=0")
		cmd.Env = append(cmd.Env, "DOTSYNC_GIT_TOKEN="+strings.TrimSpace(string(token)))
		cmd.Args = insertGitFlags(cmd.Args,
			"-c", `credential.helper=!f() { echo "username=x-access-token"; echo "password=$DOTSYNC_GIT_TOKEN"; }; f`,
		)
	}

	return nil
}

// insertGitFlags inserts flags immediately after the "git" command name,
// before the subcommand.
func insertGitFlags(args []string, flags ...string) []string {
	if len(args) == 0 {
		return flags
	}
	result := make([]string, 0, len(args)+len(flags))
	result = append(result, args[0])
	result = append(result, flags...)
	result = append(result, args[1:]...)
	return result
}

// shellQuote wraps s in single quotes, escaping any embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// runCommand executes cmd with passthrough streams and converts failures to
// CommandError
func (c *ShellClient) runCommand(cmd *exec.Cmd, args []string) error {
	cmd.Dir = c.dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &CommandError{Args: args, ExitCode: code, Err: err}
	}
	return nil
}
