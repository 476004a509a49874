package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schaermu/dotsync/internal/config"
	"github.com/schaermu/dotsync/internal/differ"
	derrors "github.com/schaermu/dotsync/internal/errors"
	"github.com/schaermu/dotsync/internal/git"
	"github.com/schaermu/dotsync/internal/host"
	"github.com/schaermu/dotsync/internal/prompt"
	"github.com/schaermu/dotsync/internal/sync"
	"github.com/schaermu/dotsync/internal/ui"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	rootDir   string
	logLevel  string
	logFormat string
	assumeYes bool
	dryRun    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗"), formatError(err))
		os.Exit(git.ExitCode(err))
	}
}

// formatError appends a next step for errors the user can resolve directly
func formatError(err error) string {
	if errors.Is(err, derrors.ErrNotInitialized) {
		return fmt.Sprintf("%v, run %s first", err, ui.Code.Sprint("dotsync init"))
	}
	return err.Error()
}

var rootCmd = &cobra.Command{
	Use:   "dotsync",
	Short: "Keep dotfiles in sync through a git-backed content store",
	Long: `dotsync tracks configuration files from your home directory and mirrors their
contents into a git repository (the dotfiles root, ~/.dotfiles by default).

Use save to copy changed files into the store and commit them, and load to copy
the store back onto a system. Entries can be tagged with os or hostname to limit
them to matching machines.

Without a command, dotsync lists the registered paths.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			_ = cmd.Usage()
			return fmt.Errorf("invalid command: %q", args[0])
		}
		return nil
	},
	RunE: runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "dotsync %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/dotsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "dotfiles root (overrides paths.root)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	addListFlags(rootCmd)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(unregisterCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(gitCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	// The default location is optional, an explicit --config is not
	configPath := cfgFile
	optional := configPath == ""
	if optional {
		configPath = config.DefaultPath(home)
	}

	logger.Debug("loading configuration", "path", configPath, "optional", optional)

	cfg, err := config.Load(configPath, home, optional)
	if err != nil {
		return nil, err
	}

	if rootDir != "" {
		cfg.SetRoot(rootDir)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	logger.Debug("configuration loaded",
		"root", cfg.Paths.Root,
		"diff_tool", cfg.Diff.Tool,
		"auto_push", cfg.Sync.AutoPush,
		"auto_pull", cfg.Sync.AutoPull,
		"auth", cfg.AuthMethod())

	return cfg, nil
}

// app bundles what a command needs after configuration is loaded
type app struct {
	cfg    *config.Config
	git    *git.ShellClient
	engine *sync.Engine
	logger *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	logger := setupLogger(cmd.ErrOrStderr())

	cfg, err := loadConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	facts, err := host.Detect()
	if err != nil {
		return nil, err
	}
	logger.Debug("detected host", "os", facts[host.KeyOS], "hostname", facts[host.KeyHostname])

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	var confirmer prompt.Confirmer = prompt.NewLineConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	if assumeYes {
		confirmer = prompt.Fixed(true)
	}

	gitClient := git.NewShellClient(cfg.Paths.Root, cfg.Auth.SSHKeyFile, cfg.Auth.HTTPSTokenFile)
	gitClient.Stdin = cmd.InOrStdin()
	gitClient.Stdout = cmd.OutOrStdout()
	gitClient.Stderr = cmd.ErrOrStderr()

	engine := sync.NewEngine(cfg, gitClient, sync.Options{
		Differ:    differ.New(cfg.Diff, ui.Enabled()),
		Confirmer: confirmer,
		Facts:     facts,
		WorkDir:   wd,
		Out:       cmd.OutOrStdout(),
		DryRun:    dryRun,
	}, logger)

	return &app{cfg: cfg, git: gitClient, engine: engine, logger: logger}, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
