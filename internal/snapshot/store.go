// Package snapshot persists full document states behind reference-counted
// handles so generation changes can be undone without recomputation.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bethropolis/cellundo/internal/logger"
	"github.com/google/uuid"
)

// Handle names a stored snapshot. Handles are compared by value.
type Handle string

// Starting is the empty handle. It stands for the document's starting
// pattern, which is owned by the host rather than the store.
const Starting Handle = ""

// IsStarting reports whether h refers to the host's starting pattern.
func (h Handle) IsStarting() bool { return h == Starting }

// Guard reports whether h is currently in use outside the store and must
// survive its last release.
type Guard func(h Handle) bool

// Store hands out refcounted handles over a Backend.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	compress bool
	refs     map[Handle]int
	guard    Guard
	closed   bool
}

// NewStore wraps backend. When compress is set payloads are gzipped.
func NewStore(backend Backend, compress bool) *Store {
	return &Store{
		backend:  backend,
		compress: compress,
		refs:     make(map[Handle]int),
	}
}

// SetGuard installs the callback consulted before deleting a payload.
func (s *Store) SetGuard(g Guard) {
	s.mu.Lock()
	s.guard = g
	s.mu.Unlock()
}

func newHandle() Handle {
	return Handle(uuid.NewString())
}

// Save writes a new snapshot and returns its handle with one reference.
func (s *Store) Save(write func(w io.Writer) error) (Handle, error) {
	data, err := s.encode(write)
	if err != nil {
		observe("save", err)
		return Starting, err
	}

	h, err := s.put(data)
	observe("save", err)
	if err != nil {
		return Starting, err
	}
	snapshotBytes.Observe(float64(len(data)))
	logger.DebugTagf("snapshot", "saved %s (%d bytes)", h, len(data))
	return h, nil
}

func (s *Store) put(data []byte) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Starting, ErrClosed
	}
	h := newHandle()
	if err := s.backend.Put(string(h), data); err != nil {
		return Starting, fmt.Errorf("%w: put %s: %v", ErrIO, h, err)
	}
	s.refs[h] = 1
	snapshotLive.Inc()
	return h, nil
}

// Reserve allocates an empty snapshot with one reference. Its payload is
// filled in later with Write.
func (s *Store) Reserve() (Handle, error) {
	h, err := s.put(nil)
	observe("reserve", err)
	return h, err
}

// Write replaces the payload of an existing handle in place.
func (s *Store) Write(h Handle, write func(w io.Writer) error) error {
	if h.IsStarting() {
		return fmt.Errorf("%w: write to the starting handle", ErrIO)
	}
	data, err := s.encode(write)
	if err != nil {
		observe("write", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.refs[h]; !ok {
		return fmt.Errorf("write %s: %w", h, ErrNotFound)
	}
	err = s.backend.Put(string(h), data)
	observe("write", err)
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrIO, h, err)
	}
	snapshotBytes.Observe(float64(len(data)))
	return nil
}

func (s *Store) encode(write func(w io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if s.compress {
		zw := gzip.NewWriter(&buf)
		err = write(zw)
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	} else {
		err = write(&buf)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %v", ErrIO, err)
	}
	return buf.Bytes(), nil
}

// Copy duplicates the payload of h under a new handle with one reference.
func (s *Store) Copy(h Handle) (Handle, error) {
	if h.IsStarting() {
		return Starting, ErrNotFound
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Starting, ErrClosed
	}
	data, err := s.backend.Get(string(h))
	s.mu.Unlock()
	if err != nil {
		observe("copy", err)
		return Starting, fmt.Errorf("%w: copy %s: %v", ErrIO, h, err)
	}

	nh, err := s.put(data)
	observe("copy", err)
	if err == nil {
		logger.DebugTagf("snapshot", "copied %s to %s", h, nh)
	}
	return nh, err
}

// Open returns a reader over the decoded payload of h.
func (s *Store) Open(h Handle) (io.ReadCloser, error) {
	if h.IsStarting() {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	data, err := s.backend.Get(string(h))
	s.mu.Unlock()
	observe("open", err)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", h, err)
	}

	// gzip magic; pattern text never starts with it.
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decompress %s: %v", ErrIO, h, err)
		}
		return zr, nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Retain adds a reference to h and returns it.
func (s *Store) Retain(h Handle) Handle {
	if h.IsStarting() {
		return h
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.refs[h]; ok {
		if n == 0 {
			snapshotLive.Inc()
		}
		s.refs[h] = n + 1
		observe("share", nil)
	} else {
		logger.WarnTagf("snapshot", "retain of unknown handle %s", h)
	}
	return h
}

// Release drops a reference to h. The payload is deleted once nothing
// references it, unless the guard reports it is still in use. A guarded
// handle stays known at zero references so it can be retained again or
// deleted by a later release.
func (s *Store) Release(h Handle) error {
	if h.IsStarting() {
		return nil
	}
	s.mu.Lock()
	n, ok := s.refs[h]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if n > 1 {
		s.refs[h] = n - 1
		s.mu.Unlock()
		return nil
	}
	if n == 1 {
		snapshotLive.Dec()
	}
	s.refs[h] = 0
	guard, closed := s.guard, s.closed
	s.mu.Unlock()

	if closed {
		return nil
	}
	if guard != nil && guard(h) {
		observe("protected", nil)
		logger.DebugTagf("snapshot", "kept %s: still the starting pattern", h)
		return nil
	}

	s.mu.Lock()
	if s.refs[h] != 0 {
		s.mu.Unlock()
		return nil
	}
	delete(s.refs, h)
	s.mu.Unlock()

	err := s.backend.Delete(string(h))
	observe("delete", err)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: delete %s: %v", ErrIO, h, err)
	}
	logger.DebugTagf("snapshot", "deleted %s", h)
	return nil
}

// Refs reports the current reference count of h.
func (s *Store) Refs(h Handle) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[h]
}

// Exists reports whether the backend still holds a payload for h.
func (s *Store) Exists(h Handle) bool {
	if h.IsStarting() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	_, err := s.backend.Get(string(h))
	return err == nil
}

// Close closes the backend. Outstanding handles become invalid.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, n := range s.refs {
		if n > 0 {
			snapshotLive.Dec()
		}
	}
	s.refs = make(map[Handle]int)
	return s.backend.Close()
}
