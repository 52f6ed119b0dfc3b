package snapshot

import "errors"

var (
	// ErrNotFound is returned when a handle has no stored payload.
	ErrNotFound = errors.New("snapshot not found")
	// ErrClosed is returned by operations on a closed store or backend.
	ErrClosed = errors.New("snapshot store closed")
	// ErrIO wraps backend failures while saving, copying or deleting.
	ErrIO = errors.New("snapshot i/o failure")
)
