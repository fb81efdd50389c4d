package tuner

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-studio/dsp/buffer"
)

// ErrCaptureStopped is returned by a Capture after Stop.
var ErrCaptureStopped = errors.New("tuner: capture stopped")

// Capture is a live mono input stream.
type Capture interface {
	// SampleRate returns the stream sample rate in Hz.
	SampleRate() float64
	// ReadWindow copies the most recent samples into dst without blocking
	// and returns how many were available.
	ReadWindow(dst []float64) (int, error)
	// Stop releases the stream. Later reads return ErrCaptureStopped.
	Stop() error
}

// RingCapture adapts any push-style producer to Capture. The producer
// calls Write from its own goroutine; the session reads the newest window.
type RingCapture struct {
	ring       *buffer.Ring
	sampleRate float64
	stopped    atomic.Bool
}

// NewRingCapture keeps up to capacity samples at sampleRate.
func NewRingCapture(sampleRate float64, capacity int) (*RingCapture, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tuner: invalid sample rate %v", sampleRate)
	}

	ring, err := buffer.NewRing(capacity)
	if err != nil {
		return nil, fmt.Errorf("tuner: %w", err)
	}

	return &RingCapture{ring: ring, sampleRate: sampleRate}, nil
}

// Write appends captured samples.
func (c *RingCapture) Write(samples []float64) error {
	if c.stopped.Load() {
		return ErrCaptureStopped
	}
	c.ring.Write(samples)
	return nil
}

// SampleRate implements Capture.
func (c *RingCapture) SampleRate() float64 { return c.sampleRate }

// ReadWindow implements Capture.
func (c *RingCapture) ReadWindow(dst []float64) (int, error) {
	if c.stopped.Load() {
		return 0, ErrCaptureStopped
	}
	return c.ring.Latest(dst), nil
}

// Stop implements Capture. It is idempotent.
func (c *RingCapture) Stop() error {
	if c.stopped.CompareAndSwap(false, true) {
		c.ring.Reset()
	}
	return nil
}
