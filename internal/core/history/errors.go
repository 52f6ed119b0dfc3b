package history

import "errors"

var (
	// ErrAborted is returned by a Host when the user cancels a lengthy
	// operation. Undo and Redo treat it as "did not complete".
	ErrAborted = errors.New("operation aborted")
	// ErrInvariant signals corrupted history: a missing script marker, or a
	// marker reached where a change was expected.
	ErrInvariant = errors.New("history invariant violated")
	// ErrNoStartMarker is returned when a grouped undo runs out of records
	// before finding the script start marker.
	ErrNoStartMarker = errors.New("no matching script start marker")
)
