package waveform

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Stats counts lookups since the cache was created.
type Stats struct {
	MemoryHits uint64
	StoreHits  uint64
	Misses     uint64
	Entries    int // memory tier size
}

// HitRate returns the fraction of lookups served by either tier.
func (s Stats) HitRate() float64 {
	total := s.MemoryHits + s.StoreHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.MemoryHits+s.StoreHits) / float64(total)
}

// Cache is the two-tier waveform cache. It is safe for concurrent use.
//
// The memory tier is not subject to the TTL: an entry stays valid there
// until evicted or cleared.
type Cache struct {
	mem   *lru.Cache[string, Entry]
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   *logrus.Entry

	memHits   atomic.Uint64
	storeHits atomic.Uint64
	misses    atomic.Uint64
}

// New creates a cache with capacity 20 and a 7 day TTL unless overridden.
func New(opts ...Option) (*Cache, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mem, err := lru.New[string, Entry](cfg.capacity)
	if err != nil {
		return nil, fmt.Errorf("waveform: creating memory tier: %w", err)
	}

	return &Cache{
		mem:   mem,
		store: cfg.store,
		ttl:   cfg.ttl,
		now:   cfg.now,
		log:   cfg.log,
	}, nil
}

// Get looks key up in the memory tier, then in the persistent tier. A
// persistent entry younger than the TTL is promoted into memory. Expired
// entries are left in place for ClearExpired. The returned peaks are a
// copy the caller may modify.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	if e, ok := c.mem.Get(key); ok {
		c.memHits.Add(1)
		e.Peaks = slices.Clone(e.Peaks)
		return e, true
	}

	if c.store == nil {
		c.misses.Add(1)
		return Entry{}, false
	}

	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.warn("Get", key, err, "Persistent waveform lookup failed")
		c.misses.Add(1)
		return Entry{}, false
	}
	if !ok || c.expired(e) {
		c.misses.Add(1)
		return Entry{}, false
	}

	c.mem.Add(key, e)
	c.storeHits.Add(1)
	e.Peaks = slices.Clone(e.Peaks)
	return e, true
}

// Set stores peaks and duration under key with the current time. The
// memory tier is always updated; the persistent write is best effort.
func (c *Cache) Set(ctx context.Context, key string, peaks []float64, duration float64) Entry {
	e := Entry{
		Key:             key,
		Peaks:           slices.Clone(peaks),
		DurationSeconds: duration,
		TimestampMs:     c.now().UnixMilli(),
	}

	c.mem.Add(key, e)

	if c.store != nil {
		if err := c.store.Put(ctx, e); err != nil {
			c.warn("Set", key, err, "Persistent waveform write failed")
		}
	}

	return e
}

// Remove drops key from both tiers.
func (c *Cache) Remove(ctx context.Context, key string) {
	c.mem.Remove(key)

	if c.store != nil {
		if err := c.store.Delete(ctx, key); err != nil {
			c.warn("Remove", key, err, "Persistent waveform delete failed")
		}
	}
}

// Clear empties both tiers.
func (c *Cache) Clear(ctx context.Context) {
	c.mem.Purge()

	if c.store != nil {
		if err := c.store.DeleteAll(ctx); err != nil {
			c.warn("Clear", "", err, "Persistent waveform clear failed")
		}
	}
}

// ClearExpired deletes persistent entries older than the TTL and returns
// how many were removed. The memory tier is untouched.
func (c *Cache) ClearExpired(ctx context.Context) int {
	if c.store == nil {
		return 0
	}

	var expired []string
	for e, err := range c.store.ScanByTimestamp(ctx) {
		if err != nil {
			c.warn("ClearExpired", "", err, "Persistent waveform scan failed")
			break
		}
		if !c.expired(e) {
			break
		}
		expired = append(expired, e.Key)
	}

	removed := 0
	for _, key := range expired {
		if err := c.store.Delete(ctx, key); err != nil {
			c.warn("ClearExpired", key, err, "Persistent waveform delete failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		c.log.WithFields(logrus.Fields{
			"function": "ClearExpired",
			"removed":  removed,
		}).Debug("Removed expired waveforms")
	}

	return removed
}

// Len returns the number of entries in the memory tier.
func (c *Cache) Len() int { return c.mem.Len() }

// Stats returns the lookup counters.
func (c *Cache) Stats() Stats {
	return Stats{
		MemoryHits: c.memHits.Load(),
		StoreHits:  c.storeHits.Load(),
		Misses:     c.misses.Load(),
		Entries:    c.mem.Len(),
	}
}

func (c *Cache) expired(e Entry) bool {
	return c.now().UnixMilli()-e.TimestampMs > c.ttl.Milliseconds()
}

func (c *Cache) warn(function, key string, err error, msg string) {
	fields := logrus.Fields{
		"function": function,
		"error":    err.Error(),
	}
	if key != "" {
		fields["key"] = key
	}
	c.log.WithFields(fields).Warn(msg)
}
