package grid

import "errors"

var (
	// ErrOutsideLimits is returned for coordinates beyond the editable area.
	ErrOutsideLimits = errors.New("outside editing limits")
	// ErrBadRule is returned for rule strings that cannot be parsed.
	ErrBadRule = errors.New("invalid rule")
	// ErrNoSelection is returned by commands that need a selection.
	ErrNoSelection = errors.New("no selection")
	// ErrLastView is returned when removing the only view.
	ErrLastView = errors.New("cannot remove the last view")
	// ErrUnknownView is returned for view ids the document does not have.
	ErrUnknownView = errors.New("unknown view")
	// ErrBadPattern is returned when pattern text cannot be decoded.
	ErrBadPattern = errors.New("invalid pattern")
)

// Limit is the largest absolute coordinate a cell may have.
const Limit = 1_000_000_000
