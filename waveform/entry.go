package waveform

import (
	"context"
	"iter"
	"time"
)

// Entry is one cached waveform.
type Entry struct {
	Key             string    `json:"key"`
	Peaks           []float64 `json:"peaks"`
	DurationSeconds float64   `json:"duration"`
	TimestampMs     int64     `json:"timestamp"`
}

// Timestamp returns the creation time of the entry.
func (e Entry) Timestamp() time.Time {
	return time.UnixMilli(e.TimestampMs)
}

// Store is a persistent key-value tier. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the entry for key. A missing key is (Entry{}, false, nil).
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Put inserts or replaces the entry under e.Key.
	Put(ctx context.Context, e Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error
	// ScanByTimestamp yields entries oldest first. Iteration stops at the
	// first error, which is yielded with a zero Entry.
	ScanByTimestamp(ctx context.Context) iter.Seq2[Entry, error]
}
