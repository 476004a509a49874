// Package registry persists the set of tracked entries.
//
// The registry is a JSON document with an ordered "entries" array. Each
// entry maps a path written in ~ notation to the id naming its blob in the
// content store, plus an optional set of tags. Entry order is insertion
// order and survives a save/load cycle.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	derrors "github.com/schaermu/dotsync/internal/errors"
)

// Entry is one tracked file
type Entry struct {
	Path string            `json:"path"`
	ID   string            `json:"id"`
	Tags map[string]string `json:"tags"`
}

// NewEntry creates an entry for path with a fresh id and no tags
func NewEntry(path string) Entry {
	return Entry{
		Path: path,
		ID:   uuid.NewString(),
		Tags: make(map[string]string),
	}
}

// UnmarshalJSON accepts the legacy "guid" field in place of "id".
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Path string            `json:"path"`
		ID   string            `json:"id"`
		GUID string            `json:"guid"`
		Tags map[string]string `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Path = raw.Path
	e.ID = raw.ID
	if e.ID == "" {
		e.ID = raw.GUID
	}
	e.Tags = raw.Tags
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	return nil
}

// TagKeys returns the entry's tag keys in sorted order
func (e Entry) TagKeys() []string {
	keys := make([]string, 0, len(e.Tags))
	for k := range e.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry is the full persisted state
type Registry struct {
	Entries []Entry `json:"entries"`
}

// Find returns the entry tracking path
func (r *Registry) Find(path string) (*Entry, bool) {
	for i := range r.Entries {
		if r.Entries[i].Path == path {
			return &r.Entries[i], true
		}
	}
	return nil, false
}

// Add appends e, refusing paths that are already tracked
func (r *Registry) Add(e Entry) error {
	if _, exists := r.Find(e.Path); exists {
		return fmt.Errorf("%s: %w", e.Path, derrors.ErrDuplicatePath)
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	r.Entries = append(r.Entries, e)
	return nil
}

// Remove drops every entry tracking path and returns the removed entries.
// Duplicates cannot be created through Add but a hand-edited document may
// contain them.
func (r *Registry) Remove(path string) []Entry {
	var removed []Entry
	kept := r.Entries[:0]
	for _, e := range r.Entries {
		if e.Path == path {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	r.Entries = kept
	return removed
}

// SetTag sets key=value on the entry tracking path
func (r *Registry) SetTag(path, key, value string) error {
	e, ok := r.Find(path)
	if !ok {
		return fmt.Errorf("%s: %w", path, derrors.ErrEntryNotFound)
	}
	if e.Tags == nil {
		e.Tags = make(map[string]string)
	}
	e.Tags[key] = value
	return nil
}

// RemoveTag deletes key from the entry tracking path
func (r *Registry) RemoveTag(path, key string) error {
	e, ok := r.Find(path)
	if !ok {
		return fmt.Errorf("%s: %w", path, derrors.ErrEntryNotFound)
	}
	if _, ok := e.Tags[key]; !ok {
		return fmt.Errorf("%s on %s: %w", key, path, derrors.ErrTagNotFound)
	}
	delete(e.Tags, key)
	return nil
}
