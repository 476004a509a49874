// Package sync copies tracked files between the system and the content store.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schaermu/dotsync/internal/config"
	"github.com/schaermu/dotsync/internal/differ"
	"github.com/schaermu/dotsync/internal/git"
	"github.com/schaermu/dotsync/internal/host"
	"github.com/schaermu/dotsync/internal/paths"
	"github.com/schaermu/dotsync/internal/prompt"
	"github.com/schaermu/dotsync/internal/registry"
	"github.com/schaermu/dotsync/internal/ui"
)

// Options carries the collaborators an Engine needs besides git
type Options struct {
	Differ    differ.Differ
	Confirmer prompt.Confirmer
	Facts     host.Facts
	WorkDir   string    // resolves relative paths given to Register and friends
	Out       io.Writer // receives diffs and copy previews
	DryRun    bool
}

// Engine orchestrates registry changes and the save/load cycle
type Engine struct {
	cfg     *config.Config
	store   *registry.Store
	paths   *paths.Translator
	git     git.Client
	differ  differ.Differ
	confirm prompt.Confirmer
	facts   host.Facts
	workDir string
	out     io.Writer
	logger  *slog.Logger
	dryRun  bool
}

// NewEngine creates a new sync engine
func NewEngine(cfg *config.Config, gitClient git.Client, opts Options, logger *slog.Logger) *Engine {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	confirm := opts.Confirmer
	if confirm == nil {
		confirm = prompt.Fixed(false)
	}
	d := opts.Differ
	if d == nil {
		d = &differ.Builtin{}
	}
	return &Engine{
		cfg:     cfg,
		store:   registry.NewStore(cfg.RegistryPath()),
		paths:   paths.NewTranslator(cfg.Home, cfg.ContentDir()),
		git:     gitClient,
		differ:  d,
		confirm: confirm,
		facts:   opts.Facts,
		workDir: opts.WorkDir,
		out:     out,
		logger:  logger,
		dryRun:  opts.DryRun,
	}
}

// Save copies changed system files into the content store and commits them.
// An empty message yields a default listing the changed paths.
func (e *Engine) Save(ctx context.Context, message string) (*Result, error) {
	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	plan, err := e.buildPlan(reg, ToContent)
	if err != nil {
		return nil, fmt.Errorf("failed to build save plan: %w", err)
	}
	result := &Result{Plan: plan}

	e.logger.Info("save plan", "copy", len(plan.Copies), "skip", len(plan.Skipped), "dry_run", e.dryRun)
	if len(plan.Copies) == 0 {
		return result, nil
	}

	confirmed, err := e.preview(ctx, plan, fmt.Sprintf("Save %d file(s) to the content store?", len(plan.Copies)))
	if err != nil || !confirmed {
		return result, err
	}
	result.Confirmed = true

	if result.Copied, err = e.applyPlan(plan); err != nil {
		return result, fmt.Errorf("failed to apply save plan: %w", err)
	}

	if message == "" {
		message = "updated content " + strings.Join(result.Copied, ", ")
	}
	if err := e.commit(ctx, message); err != nil {
		return result, err
	}
	result.Committed = true

	if e.cfg.Sync.AutoPush {
		e.logger.Info("pushing content store")
		if err := e.git.Push(ctx); err != nil {
			return result, fmt.Errorf("failed to push: %w", err)
		}
		result.Pushed = true
	}

	return result, nil
}

// Load copies changed content store blobs onto the system. Nothing is
// committed since the store is not modified.
func (e *Engine) Load(ctx context.Context) (*Result, error) {
	result := &Result{}

	if e.cfg.Sync.AutoPull {
		if e.dryRun {
			e.logger.Info("[dry-run] skipping pull")
		} else {
			e.logger.Info("pulling content store")
			if err := e.git.Pull(ctx); err != nil {
				return nil, fmt.Errorf("failed to pull: %w", err)
			}
			result.Pulled = true
		}
	}

	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	plan, err := e.buildPlan(reg, ToSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to build load plan: %w", err)
	}
	result.Plan = plan

	e.logger.Info("load plan", "copy", len(plan.Copies), "skip", len(plan.Skipped), "dry_run", e.dryRun)
	if len(plan.Copies) == 0 {
		return result, nil
	}

	for _, op := range plan.Copies {
		if op.Create {
			_, _ = fmt.Fprintf(e.out, "%s %s\n", ui.Added.Sprint("+ create   "), op.Dest)
		} else {
			_, _ = fmt.Fprintf(e.out, "%s %s\n", ui.Warning.Sprint("* overwrite"), op.Dest)
		}
	}

	confirmed, err := e.preview(ctx, plan, fmt.Sprintf("Load %d file(s) onto this system?", len(plan.Copies)))
	if err != nil || !confirmed {
		return result, err
	}
	result.Confirmed = true

	if result.Copied, err = e.applyPlan(plan); err != nil {
		return result, fmt.Errorf("failed to apply load plan: %w", err)
	}
	return result, nil
}

// Diff shows how the content store differs from the system for the entry
// tracking input, or for every entry when input is empty.
func (e *Engine) Diff(ctx context.Context, input string) error {
	reg, err := e.store.Load()
	if err != nil {
		return err
	}

	entries := reg.Entries
	if input != "" {
		entry, err := e.lookup(reg, input)
		if err != nil {
			return err
		}
		entries = []registry.Entry{*entry}
	}

	for _, entry := range entries {
		content := e.paths.ContentPath(entry)
		system := e.paths.SystemPath(entry)
		if isDir(content) || isDir(system) {
			e.logger.Error("directories unsupported", "path", entry.Path)
			continue
		}
		if !exists(content) && !exists(system) {
			e.logger.Warn("missing on both sides", "path", entry.Path)
			continue
		}
		if err := e.differ.Diff(ctx, content, system, e.out); err != nil {
			return fmt.Errorf("failed to diff %s: %w", entry.Path, err)
		}
	}
	return nil
}

// Status reports the eligibility of every applicable entry in both directions
func (e *Engine) Status() ([]StatusItem, error) {
	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	items := make([]StatusItem, 0, len(reg.Entries))
	for _, entry := range reg.Entries {
		if !e.facts.Applies(entry.Tags) {
			continue
		}
		system := e.paths.SystemPath(entry)
		content := e.paths.ContentPath(entry)

		save, err := CanCopy(system, content)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", entry.Path, err)
		}
		load, err := CanCopy(content, system)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", entry.Path, err)
		}
		items = append(items, StatusItem{Entry: entry, Save: save, Load: load})
	}
	return items, nil
}

// Push sends content store commits to the remote
func (e *Engine) Push(ctx context.Context) error {
	e.logger.Info("pushing content store", "auth", e.cfg.AuthMethod())
	return e.git.Push(ctx)
}

// Pull merges remote content store commits
func (e *Engine) Pull(ctx context.Context) error {
	e.logger.Info("pulling content store", "auth", e.cfg.AuthMethod())
	return e.git.Pull(ctx)
}

// buildPlan computes the copies needed to bring dir's destination side in
// line with its source side. Entries not applicable to this host are ignored.
func (e *Engine) buildPlan(reg *registry.Registry, dir Direction) (*Plan, error) {
	plan := &Plan{
		Direction: dir,
		Copies:    make([]CopyOp, 0),
		Skipped:   make([]Skip, 0),
	}

	for _, entry := range reg.Entries {
		if !e.facts.Applies(entry.Tags) {
			e.logger.Debug("not applicable to this system", "path", entry.Path)
			continue
		}

		src, dst := e.paths.SystemPath(entry), e.paths.ContentPath(entry)
		if dir == ToSystem {
			src, dst = dst, src
		}

		elig, err := CanCopy(src, dst)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", entry.Path, err)
		}

		switch elig {
		case Eligible:
			_, statErr := os.Stat(dst)
			plan.Copies = append(plan.Copies, CopyOp{
				Entry:  entry,
				Source: src,
				Dest:   dst,
				Create: errors.Is(statErr, fs.ErrNotExist),
			})
			continue
		case InSync:
			e.logger.Debug("already in sync", "path", entry.Path)
		case SourceMissing:
			if dir == ToContent {
				e.logger.Warn("not found on system", "path", src)
			} else {
				e.logger.Warn("missing content", "path", entry.Path, "expected", src)
			}
		case SourceDirectory:
			e.logger.Error("directories unsupported", "path", src)
		case SourceIrregular:
			e.logger.Warn("not a regular file", "path", src)
		case DestinationUnsupported:
			e.logger.Error("destination is not a regular file", "path", dst)
		}

		path := src
		if elig == DestinationUnsupported {
			path = dst
		}
		plan.Skipped = append(plan.Skipped, Skip{Entry: entry, Path: path, Reason: elig})
	}

	return plan, nil
}

// preview writes a diff for every planned copy showing what the destination
// will become, then asks for confirmation. Dry runs never confirm.
func (e *Engine) preview(ctx context.Context, plan *Plan, question string) (bool, error) {
	for _, op := range plan.Copies {
		if err := e.differ.Diff(ctx, op.Dest, op.Source, e.out); err != nil {
			return false, fmt.Errorf("failed to diff %s: %w", op.Entry.Path, err)
		}
	}

	if e.dryRun {
		e.logPlanDetails(plan)
		e.logger.Info("dry-run complete, no changes applied")
		return false, nil
	}

	confirmed, err := e.confirm.Confirm(question)
	if err != nil {
		return false, err
	}
	if !confirmed {
		e.logger.Info("not confirmed, no changes applied")
	}
	return confirmed, nil
}

// applyPlan executes the copies and returns the registered paths it touched
func (e *Engine) applyPlan(plan *Plan) ([]string, error) {
	copied := make([]string, 0, len(plan.Copies))
	for _, op := range plan.Copies {
		e.logger.Info("copying file", "path", op.Entry.Path, "source", op.Source, "dest", op.Dest)
		if err := copyFile(op.Source, op.Dest); err != nil {
			return copied, fmt.Errorf("failed to copy %s: %w", op.Entry.Path, err)
		}
		copied = append(copied, op.Entry.Path)
	}
	return copied, nil
}

// logPlanDetails logs detailed plan information for dry-run
func (e *Engine) logPlanDetails(plan *Plan) {
	for _, op := range plan.Copies {
		e.logger.Info("[dry-run] would copy", "path", op.Entry.Path, "source", op.Source, "dest", op.Dest)
	}
}

// commit stages everything under the root and records it
func (e *Engine) commit(ctx context.Context, message string) error {
	e.logger.Info("committing", "message", message)
	if err := e.git.AddAll(ctx); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	if err := e.git.Commit(ctx, message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// copyFile copies a file from src to dst with atomic write
func copyFile(src, dst string) error {
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	// Create temp file in destination directory
	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".dotsync-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		_ = tmpFile.Close()
		return err
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		_ = tmpFile.Close()
		return err
	}

	// Keep the source permissions
	if err := tmpFile.Chmod(srcInfo.Mode().Perm()); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, dst)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
