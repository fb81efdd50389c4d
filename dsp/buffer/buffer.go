package buffer

// Buffer wraps a float64 slice that is resized in place between uses.
// DSP functions accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	return &Buffer{samples: make([]float64, max(length, 0))}
}

// FromSlice wraps an existing slice without copying.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 { return b.samples }

// Len returns the current number of samples.
func (b *Buffer) Len() int { return len(b.samples) }

// Cap returns the capacity of the backing slice.
func (b *Buffer) Cap() int { return cap(b.samples) }

// Resize sets the length to n, reusing capacity when possible. Elements
// beyond the previous length are zeroed.
func (b *Buffer) Resize(n int) {
	n = max(n, 0)
	old := len(b.samples)

	if n > cap(b.samples) {
		grown := make([]float64, n)
		copy(grown, b.samples)
		b.samples = grown
		return
	}

	b.samples = b.samples[:n]
	if n > old {
		clear(b.samples[old:])
	}
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() { clear(b.samples) }
