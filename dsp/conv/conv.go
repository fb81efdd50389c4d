// Package conv provides FFT-based block convolution for long kernels.
//
// Partitioned implements uniformly partitioned overlap-save convolution: the
// kernel is cut into blockSize partitions whose spectra are multiplied
// against a frequency-domain delay line of past input blocks. Each call to
// ProcessBlock produces exactly blockSize output samples with no added
// latency, which makes it suitable for a render callback that works in fixed
// quanta.
//
// Direct is an O(N*M) time-domain reference used to validate the FFT path.
package conv

import (
	"errors"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput       = errors.New("conv: empty input")
	ErrEmptyKernel      = errors.New("conv: empty kernel")
	ErrLengthMismatch   = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize = errors.New("conv: invalid block size")
)

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution, writing to a pre-allocated destination.
// dst must have length len(a) + len(b) - 1.
func DirectTo(dst, a, b []float64) {
	clear(dst)

	for i, x := range a {
		if x == 0 {
			continue
		}
		out := dst[i : i+len(b)]
		for j, h := range b {
			out[j] += x * h
		}
	}
}

// isPowerOf2 returns true if n is a power of 2.
func isPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
