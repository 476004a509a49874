package errors

import "errors"

// Input errors are expected, recoverable conditions caused by user arguments.
var (
	// ErrPathNotFound indicates the system path to register does not exist.
	ErrPathNotFound = errors.New("path not found on system")

	// ErrDuplicatePath indicates the path is already tracked.
	ErrDuplicatePath = errors.New("path is already registered")

	// ErrEntryNotFound indicates the operation references an untracked path.
	ErrEntryNotFound = errors.New("path is not registered")

	// ErrTagNotFound indicates an untag of a key the entry does not carry.
	ErrTagNotFound = errors.New("tag not found")
)

// State errors indicate the persisted registry cannot be used.
var (
	// ErrCorruptState indicates the registry document could not be parsed.
	ErrCorruptState = errors.New("registry document is corrupt")

	// ErrNotInitialized indicates the dotfiles root is not a git work tree yet.
	ErrNotInitialized = errors.New("dotfiles root is not initialized")
)

// File errors indicate a tracked path has an unsupported type.
var (
	// ErrUnsupportedEntryKind indicates a directory or special file where a regular file was required.
	ErrUnsupportedEntryKind = errors.New("unsupported entry kind")
)

// Collaborator errors indicate an external process failed.
var (
	// ErrSubprocessFailure indicates git or the diff tool exited with a non-zero status.
	ErrSubprocessFailure = errors.New("subprocess failed")
)
