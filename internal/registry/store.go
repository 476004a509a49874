package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	derrors "github.com/schaermu/dotsync/internal/errors"
)

// Store loads and saves a Registry at a fixed path
type Store struct {
	path string
}

// NewStore creates a store backed by the document at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Exists reports whether the registry document is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the registry. A missing document yields an empty registry.
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Registry{Entries: []Entry{}}, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", s.path, derrors.ErrCorruptState, err)
	}
	if reg.Entries == nil {
		reg.Entries = []Entry{}
	}
	for i, e := range reg.Entries {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("%s: %w: entry %d: %v", s.path, derrors.ErrCorruptState, i, err)
		}
	}

	return &reg, nil
}

// validate checks the fields an entry needs to locate its blob. The id must
// name a single file inside the content directory.
func validate(e Entry) error {
	switch {
	case e.Path == "":
		return errors.New("missing path")
	case e.ID == "":
		return fmt.Errorf("%s has no id", e.Path)
	case e.ID == "." || e.ID == ".." || e.ID != filepath.Base(e.ID) || strings.ContainsAny(e.ID, `/\`):
		return fmt.Errorf("%s has invalid id %q", e.Path, e.ID)
	}
	return nil
}

// Save writes the registry using atomic write (temp file + rename).
// Tag maps are encoded with sorted keys so repeated saves diff cleanly.
func (s *Store) Save(reg *Registry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	if reg.Entries == nil {
		reg.Entries = []Entry{}
	}
	for i := range reg.Entries {
		if reg.Entries[i].Tags == nil {
			reg.Entries[i].Tags = make(map[string]string)
		}
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
