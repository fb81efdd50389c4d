package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// NewBus allocates a zeroed planar multi-channel buffer.
func NewBus(channels, frames int) [][]float64 {
	bus := make([][]float64, channels)
	for ch := range bus {
		bus[ch] = make([]float64, frames)
	}
	return bus
}

// ZeroBus clears every channel of bus.
func ZeroBus(bus [][]float64) {
	for _, ch := range bus {
		Zero(ch)
	}
}

// BusFrames returns the frame count of bus (the length of its first channel).
func BusFrames(bus [][]float64) int {
	if len(bus) == 0 {
		return 0
	}
	return len(bus[0])
}
