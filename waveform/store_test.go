package waveform

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"maps"
	"slices"
	"sync"
	"time"
)

// mapStore is an in-memory Store for tests.
type mapStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string]Entry)}
}

func (s *mapStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *mapStore) Put(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Key] = e
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *mapStore) DeleteAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	return nil
}

func (s *mapStore) ScanByTimestamp(context.Context) iter.Seq2[Entry, error] {
	s.mu.Lock()
	sorted := slices.SortedFunc(maps.Values(s.entries), func(a, b Entry) int {
		return cmp.Compare(a.TimestampMs, b.TimestampMs)
	})
	s.mu.Unlock()

	return func(yield func(Entry, error) bool) {
		for _, e := range sorted {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (s *mapStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var errStoreDown = errors.New("storage unavailable")

// failingStore fails every call.
type failingStore struct {
	calls int
	mu    sync.Mutex
}

func (s *failingStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *failingStore) Get(context.Context, string) (Entry, bool, error) {
	s.hit()
	return Entry{}, false, errStoreDown
}

func (s *failingStore) Put(context.Context, Entry) error {
	s.hit()
	return errStoreDown
}

func (s *failingStore) Delete(context.Context, string) error {
	s.hit()
	return errStoreDown
}

func (s *failingStore) DeleteAll(context.Context) error {
	s.hit()
	return errStoreDown
}

func (s *failingStore) ScanByTimestamp(context.Context) iter.Seq2[Entry, error] {
	s.hit()
	return func(yield func(Entry, error) bool) {
		yield(Entry{}, errStoreDown)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
