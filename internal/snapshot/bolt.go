package snapshot

import (
	"fmt"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketSnapshots = []byte("snapshots")

// BoltDBFileName is the database file created inside the snapshot directory.
const BoltDBFileName = "snapshots.db"

// BoltBackend stores snapshots in a single bbolt bucket.
type BoltBackend struct {
	db *bbolt.DB
}

// NewBoltBackend opens (or creates) the snapshot database in dir.
func NewBoltBackend(dir string) (*BoltBackend, error) {
	db, err := bbolt.Open(filepath.Join(dir, BoltDBFileName), 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	b := &BoltBackend{db: db}
	if err := b.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}
	return b, nil
}

func (b *BoltBackend) initBuckets() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
}

func (b *BoltBackend) Put(key string, data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSnapshots).Put([]byte(key), data)
	})
}

func (b *BoltBackend) Get(key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v, ok := lookup(tx, key)
		if !ok {
			return ErrNotFound
		}
		// v is only valid inside the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (b *BoltBackend) Delete(key string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if _, ok := lookup(tx, key); !ok {
			return ErrNotFound
		}
		return tx.Bucket(bucketSnapshots).Delete([]byte(key))
	})
}

// lookup finds key with a cursor so that empty payloads count as present.
func lookup(tx *bbolt.Tx, key string) ([]byte, bool) {
	k, v := tx.Bucket(bucketSnapshots).Cursor().Seek([]byte(key))
	if k == nil || string(k) != key {
		return nil, false
	}
	return v, true
}

// Close closes the database connection.
func (b *BoltBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
