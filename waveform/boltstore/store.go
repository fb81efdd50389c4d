// Package boltstore is a bbolt-backed persistent tier for waveform.Cache.
//
// Entries are stored as JSON in the "waveforms" bucket. A second bucket
// indexes keys by timestamp (8-byte big-endian milliseconds followed by
// the key) so expired entries can be found oldest first.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"iter"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cwbudde/algo-studio/waveform"
)

var (
	entriesBucket = []byte("waveforms")
	indexBucket   = []byte("waveforms_by_time")
)

var _ waveform.Store = (*Store)(nil)

// Store implements waveform.Store on a bbolt database.
type Store struct {
	db    *bolt.DB
	owned bool
}

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: opening %s: %w", path, err)
	}

	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New uses an already open database. Close leaves such a database open.
func New(db *bolt.DB) (*Store, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{entriesBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: creating buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Get implements waveform.Store.
func (s *Store) Get(ctx context.Context, key string) (waveform.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return waveform.Entry{}, false, err
	}

	var (
		e     waveform.Entry
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(entriesBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &e)
	})
	if err != nil {
		return waveform.Entry{}, false, fmt.Errorf("boltstore: reading %q: %w", key, err)
	}
	return e, found, nil
}

// Put implements waveform.Store.
func (s *Store) Put(ctx context.Context, e waveform.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("boltstore: encoding %q: %w", e.Key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		if err := deleteLocked(tx, e.Key); err != nil {
			return err
		}
		if err := tx.Bucket(entriesBucket).Put([]byte(e.Key), raw); err != nil {
			return err
		}
		return tx.Bucket(indexBucket).Put(indexKey(e.TimestampMs, e.Key), nil)
	})
	if err != nil {
		return fmt.Errorf("boltstore: writing %q: %w", e.Key, err)
	}
	return nil
}

// Delete implements waveform.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return deleteLocked(tx, key)
	})
	if err != nil {
		return fmt.Errorf("boltstore: deleting %q: %w", key, err)
	}
	return nil
}

// DeleteAll implements waveform.Store.
func (s *Store) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{entriesBucket, indexBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boltstore: clearing: %w", err)
	}
	return nil
}

// ScanByTimestamp implements waveform.Store. The scan runs inside a read
// transaction, so the loop body must not write to the store.
func (s *Store) ScanByTimestamp(ctx context.Context) iter.Seq2[waveform.Entry, error] {
	return func(yield func(waveform.Entry, error) bool) {
		stopped := false

		err := s.db.View(func(tx *bolt.Tx) error {
			entries := tx.Bucket(entriesBucket)
			c := tx.Bucket(indexBucket).Cursor()

			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := ctx.Err(); err != nil {
					return err
				}

				raw := entries.Get(k[8:])
				if raw == nil {
					continue
				}

				var e waveform.Entry
				if err := json.Unmarshal(raw, &e); err != nil {
					return fmt.Errorf("decoding %q: %w", k[8:], err)
				}

				if !yield(e, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})

		if err != nil && !stopped {
			yield(waveform.Entry{}, fmt.Errorf("boltstore: scanning: %w", err))
		}
	}
}

// deleteLocked removes key and its index record inside tx.
func deleteLocked(tx *bolt.Tx, key string) error {
	entries := tx.Bucket(entriesBucket)

	raw := entries.Get([]byte(key))
	if raw == nil {
		return nil
	}

	var old waveform.Entry
	if err := json.Unmarshal(raw, &old); err != nil {
		// Without the timestamp the index record cannot be located
		// directly; fall back to a scan.
		if err := deleteIndexByKey(tx, key); err != nil {
			return err
		}
	} else if err := tx.Bucket(indexBucket).Delete(indexKey(old.TimestampMs, key)); err != nil {
		return err
	}

	return entries.Delete([]byte(key))
}

func deleteIndexByKey(tx *bolt.Tx, key string) error {
	c := tx.Bucket(indexBucket).Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if bytes.Equal(k[8:], []byte(key)) {
			return c.Delete()
		}
	}
	return nil
}

func indexKey(timestampMs int64, key string) []byte {
	k := make([]byte, 8+len(key))
	binary.BigEndian.PutUint64(k, uint64(max(timestampMs, 0)))
	copy(k[8:], key)
	return k
}
