package buffer

import (
	"errors"
	"sync"
)

// ErrInvalidCapacity is returned by NewRing for a capacity below one.
var ErrInvalidCapacity = errors.New("buffer: ring capacity must be positive")

// Ring keeps the most recent samples of a stream. A producer appends with
// Write while a consumer periodically copies out the newest window with
// Latest. All methods are safe for concurrent use.
type Ring struct {
	mu    sync.Mutex
	data  []float64
	next  int
	count int
	total uint64
}

// NewRing creates a ring holding up to capacity samples.
func NewRing(capacity int) (*Ring, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Ring{data: make([]float64, capacity)}, nil
}

// Write appends samples, overwriting the oldest ones once the ring is full.
func (r *Ring) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total += uint64(len(samples))

	// Only the tail can survive a write longer than the ring.
	if len(samples) > len(r.data) {
		samples = samples[len(samples)-len(r.data):]
	}

	for len(samples) > 0 {
		n := copy(r.data[r.next:], samples)
		samples = samples[n:]
		r.next = (r.next + n) % len(r.data)
		r.count = min(r.count+n, len(r.data))
	}
}

// Latest copies the newest min(len(dst), Len()) samples into the start of
// dst in chronological order and returns how many were copied.
func (r *Ring) Latest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(len(dst), r.count)
	start := (r.next - n + len(r.data)) % len(r.data)

	first := copy(dst[:n], r.data[start:])
	if first < n {
		copy(dst[first:n], r.data[:n-first])
	}
	return n
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return len(r.data) }

// Total returns the number of samples written since creation or Reset.
func (r *Ring) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset discards all samples.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.data)
	r.next = 0
	r.count = 0
	r.total = 0
}
