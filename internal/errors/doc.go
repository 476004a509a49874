// Package errors provides typed error values for dotsync.
//
// Callers match these with errors.Is instead of comparing message text.
// Internal packages wrap them with context:
//
//	return fmt.Errorf("registering %s: %w", path, errors.ErrDuplicatePath)
//
// and the CLI decides how to present them:
//
//	if errors.Is(err, derrors.ErrEntryNotFound) {
//	    // point the user at `dotsync list`
//	}
//
// # Error Categories
//
//   - Input errors: the command referenced something that is (or is not) tracked
//     (ErrPathNotFound, ErrDuplicatePath, ErrEntryNotFound, ErrTagNotFound)
//   - State errors: the persisted registry cannot be used (ErrCorruptState, ErrNotInitialized)
//   - File errors: a tracked path is not a regular file (ErrUnsupportedEntryKind)
//   - Collaborator errors: git or the diff tool exited non-zero (ErrSubprocessFailure)
package errors
