package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	derrors "github.com/schaermu/dotsync/internal/errors"
	"github.com/schaermu/dotsync/internal/registry"
)

// Register starts tracking input. The current system file is copied into
// the content store as the initial snapshot and the change is committed.
func (e *Engine) Register(ctx context.Context, input string) (registry.Entry, error) {
	path := e.paths.Normalize(input, e.workDir)

	if err := e.requireInitialized(); err != nil {
		return registry.Entry{}, err
	}

	reg, err := e.store.Load()
	if err != nil {
		return registry.Entry{}, err
	}
	if _, exists := reg.Find(path); exists {
		return registry.Entry{}, fmt.Errorf("%s: %w", path, derrors.ErrDuplicatePath)
	}

	system := e.paths.Expand(path)
	info, err := os.Stat(system)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return registry.Entry{}, fmt.Errorf("%s: %w", system, derrors.ErrPathNotFound)
		}
		return registry.Entry{}, fmt.Errorf("failed to stat %s: %w", system, err)
	}
	if !info.Mode().IsRegular() {
		return registry.Entry{}, fmt.Errorf("%s: %w: only regular files can be registered", system, derrors.ErrUnsupportedEntryKind)
	}

	entry := registry.NewEntry(path)
	if err := reg.Add(entry); err != nil {
		return registry.Entry{}, err
	}

	content := e.paths.ContentPath(entry)
	e.logger.Info("registering", "path", path, "id", entry.ID)
	if err := copyFile(system, content); err != nil {
		return registry.Entry{}, fmt.Errorf("failed to snapshot %s: %w", path, err)
	}
	if err := e.store.Save(reg); err != nil {
		_ = os.Remove(content)
		return registry.Entry{}, err
	}

	if err := e.commit(ctx, "registered "+path); err != nil {
		e.logger.Warn("rolling back registration", "path", path, "error", err)
		reg.Remove(path)
		if saveErr := e.store.Save(reg); saveErr != nil {
			return registry.Entry{}, errors.Join(err, saveErr)
		}
		_ = os.Remove(content)
		return registry.Entry{}, err
	}
	return entry, nil
}

// Unregister stops tracking input and deletes the content blob of every
// matching entry. It returns the removed entries; none means nothing to do.
func (e *Engine) Unregister(ctx context.Context, input string) ([]registry.Entry, error) {
	path := e.paths.Normalize(input, e.workDir)

	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	removed := reg.Remove(path)
	if len(removed) == 0 {
		e.logger.Info("no entry to unregister", "path", path)
		return nil, nil
	}

	for _, entry := range removed {
		content := e.paths.ContentPath(entry)
		e.logger.Info("removing content", "path", entry.Path, "content", content)
		if err := os.Remove(content); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove content for %s: %w", entry.Path, err)
		}
	}

	if err := e.store.Save(reg); err != nil {
		return nil, err
	}
	return removed, e.commit(ctx, "unregistered "+path)
}

// Tag sets key=value on the entry tracking input
func (e *Engine) Tag(ctx context.Context, input, key, value string) error {
	if key == "" {
		return fmt.Errorf("tag key must not be empty")
	}
	path := e.paths.Normalize(input, e.workDir)

	reg, err := e.store.Load()
	if err != nil {
		return err
	}
	if err := reg.SetTag(path, key, value); err != nil {
		return err
	}
	if err := e.store.Save(reg); err != nil {
		return err
	}
	return e.commit(ctx, fmt.Sprintf("tagged %s %s=%s", path, key, value))
}

// Untag removes key from the entry tracking input
func (e *Engine) Untag(ctx context.Context, input, key string) error {
	path := e.paths.Normalize(input, e.workDir)

	reg, err := e.store.Load()
	if err != nil {
		return err
	}
	if err := reg.RemoveTag(path, key); err != nil {
		return err
	}
	if err := e.store.Save(reg); err != nil {
		return err
	}
	return e.commit(ctx, fmt.Sprintf("untagged %s %s", path, key))
}

// List returns registered entries in registry order. Entries not applicable
// to this host are included only when all is set.
func (e *Engine) List(all bool) ([]ListItem, error) {
	reg, err := e.store.Load()
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(reg.Entries))
	for _, entry := range reg.Entries {
		applies := e.facts.Applies(entry.Tags)
		if !applies && !all {
			continue
		}
		items = append(items, ListItem{
			Entry:      entry,
			SystemPath: e.paths.SystemPath(entry),
			Applies:    applies,
		})
	}
	return items, nil
}

// Init prepares the dotfiles root: a git repository, the content directory
// and an empty registry. It commits only when something was created and
// reports whether it did.
func (e *Engine) Init(ctx context.Context) (bool, error) {
	root := e.cfg.Paths.Root

	info, err := os.Stat(root)
	switch {
	case err == nil && !info.IsDir():
		return false, fmt.Errorf("%s: %w: dotfiles root cannot be a file", root, derrors.ErrUnsupportedEntryKind)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return false, fmt.Errorf("failed to create dotfiles root: %w", err)
	}
	if err := e.git.Init(ctx); err != nil {
		return false, fmt.Errorf("failed to initialize repository: %w", err)
	}

	changed := false

	contentDir := e.cfg.ContentDir()
	if _, err := os.Stat(contentDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(contentDir, 0755); err != nil {
			return false, fmt.Errorf("failed to create content directory: %w", err)
		}
		changed = true
	}

	if !e.store.Exists() {
		if err := e.store.Save(&registry.Registry{Entries: []registry.Entry{}}); err != nil {
			return false, err
		}
		changed = true
	}

	if !changed {
		return false, nil
	}
	e.logger.Info("initialized dotfiles root", "root", root)
	return true, e.commit(ctx, "init")
}

// requireInitialized fails unless the dotfiles root is a git work tree
func (e *Engine) requireInitialized() error {
	root := e.cfg.Paths.Root
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", root, derrors.ErrNotInitialized)
		}
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	return nil
}

// lookup finds the entry tracking input
func (e *Engine) lookup(reg *registry.Registry, input string) (*registry.Entry, error) {
	path := e.paths.Normalize(input, e.workDir)
	entry, ok := reg.Find(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, derrors.ErrEntryNotFound)
	}
	return entry, nil
}
