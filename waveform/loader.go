package waveform

import (
	"context"
	"fmt"
)

// DecodeFunc produces the audio behind a cache key.
type DecodeFunc func(ctx context.Context) (Audio, error)

// Loader resolves waveforms through a Cache, decoding only on a miss.
type Loader struct {
	cache *Cache
	bars  int
}

// NewLoader returns a loader producing bars peaks per track. A
// non-positive bars selects DefaultBars.
func NewLoader(cache *Cache, bars int) *Loader {
	if bars <= 0 {
		bars = DefaultBars
	}
	return &Loader{cache: cache, bars: bars}
}

// Load returns the cached entry for key, or decodes the audio, extracts
// peaks from its first channel and caches the result.
func (l *Loader) Load(ctx context.Context, key string, decode DecodeFunc) (Entry, error) {
	if e, ok := l.cache.Get(ctx, key); ok {
		return e, nil
	}

	a, err := decode(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("waveform: loading %q: %w", key, err)
	}

	var first []float64
	if len(a.Channels) > 0 {
		first = a.Channels[0]
	}

	return l.cache.Set(ctx, key, ExtractPeaks(first, l.bars), a.Duration()), nil
}

// LoadFile is Load keyed by path, decoding the file on a miss.
func (l *Loader) LoadFile(ctx context.Context, path string) (Entry, error) {
	return l.Load(ctx, path, func(context.Context) (Audio, error) {
		return DecodeFile(path)
	})
}
