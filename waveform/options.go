package waveform

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultCapacity is the number of entries kept in the memory tier.
	DefaultCapacity = 20
	// DefaultTTL is the age after which persistent entries are ignored.
	DefaultTTL = 7 * 24 * time.Hour
)

type config struct {
	capacity int
	ttl      time.Duration
	store    Store
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures a Cache.
type Option func(*config)

// WithCapacity sets the memory tier size. Values below one are ignored.
func WithCapacity(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.capacity = n
		}
	}
}

// WithTTL sets the persistent tier expiry. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(cfg *config) {
		if ttl > 0 {
			cfg.ttl = ttl
		}
	}
}

// WithStore attaches a persistent tier. Without one the cache is
// memory-only.
func WithStore(s Store) Option {
	return func(cfg *config) {
		cfg.store = s
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithLogger sets the entry used for tier failure warnings.
func WithLogger(entry *logrus.Entry) Option {
	return func(cfg *config) {
		if entry != nil {
			cfg.log = entry
		}
	}
}

func defaultConfig() config {
	return config{
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
		now:      time.Now,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
}
