package snapshot

import (
	"fmt"
	"os"
)

// Backend persists opaque snapshot payloads under string keys.
type Backend interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Close() error
}

// Backend kinds accepted by OpenBackend.
const (
	KindFile   = "file"
	KindBolt   = "bolt"
	KindBadger = "badger"
	KindMemory = "memory"
)

// OpenBackend opens a backend of the given kind rooted at dir.
// An empty dir creates a fresh temporary directory.
func OpenBackend(kind, dir string) (Backend, error) {
	if kind != KindMemory && dir == "" {
		tmp, err := os.MkdirTemp("", "cellundo-snapshots-")
		if err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
		dir = tmp
	}

	switch kind {
	case KindFile, "":
		return NewFileBackend(dir)
	case KindBolt:
		return NewBoltBackend(dir)
	case KindBadger:
		return NewBadgerBackend(BadgerConfig{Path: dir})
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", kind)
	}
}
