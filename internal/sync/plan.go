package sync

import "github.com/schaermu/dotsync/internal/registry"

// Direction selects which side of an entry is the copy source
type Direction int

const (
	// ToContent copies system files into the content store (save)
	ToContent Direction = iota
	// ToSystem copies content store blobs onto the system (load)
	ToSystem
)

// Plan represents the copies a save or load would perform
type Plan struct {
	Direction Direction
	Copies    []CopyOp
	Skipped   []Skip
}

// CopyOp represents a single planned copy
type CopyOp struct {
	Entry  registry.Entry
	Source string
	Dest   string
	Create bool // dest does not exist yet
}

// Skip records an applicable entry that will not be copied
type Skip struct {
	Entry  registry.Entry
	Path   string // the path the reason refers to
	Reason Eligibility
}

// Result reports what a save or load did
type Result struct {
	Plan      *Plan
	Confirmed bool
	Copied    []string // registered paths, in registry order
	Committed bool
	Pushed    bool
	Pulled    bool
}

// NothingToDo reports whether the plan had no eligible copies
func (r *Result) NothingToDo() bool {
	return r.Plan == nil || len(r.Plan.Copies) == 0
}

// ListItem is an entry as shown by list
type ListItem struct {
	Entry      registry.Entry
	SystemPath string
	Applies    bool
}

// StatusItem pairs an applicable entry with its eligibility in both directions
type StatusItem struct {
	Entry registry.Entry
	Save  Eligibility
	Load  Eligibility
}

// State summarizes the item for display
func (s StatusItem) State() string {
	switch {
	case s.Save == InSync:
		return "in sync"
	case s.Save == SourceMissing && s.Load == SourceMissing:
		return "missing"
	case s.Save == SourceMissing:
		return "missing on system"
	case s.Load == SourceMissing:
		return "missing content"
	case s.Save == Eligible:
		return "modified"
	default:
		return s.Save.String()
	}
}
