package pitch

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// fftCorrelator computes the normalised square difference function
//
//	nsdf(τ) = 2·r(τ) / m(τ),  r(τ) = Σ x[i]x[i+τ],  m(τ) = Σ x[i]² + x[i+τ]²
//
// with r taken from the inverse FFT of the zero-padded power spectrum.
// Plans and scratch are reused while the window length is unchanged.
type fftCorrelator struct {
	size int
	plan *algofft.Plan[complex128]

	spec  []complex128
	re    []float64
	im    []float64
	power []float64
}

func (f *fftCorrelator) ensure(n int) error {
	size := nextPowerOf2(2 * n)
	if size == f.size && f.plan != nil {
		return nil
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("pitch: failed to create FFT plan: %w", err)
	}

	f.size = size
	f.plan = plan
	f.spec = make([]complex128, size)
	f.re = make([]float64, size)
	f.im = make([]float64, size)
	f.power = make([]float64, size)

	return nil
}

func (f *fftCorrelator) nsdf(corr, x []float64) error {
	n := len(x)
	if err := f.ensure(n); err != nil {
		return err
	}

	for i := range f.spec {
		f.spec[i] = 0
	}
	for i, v := range x {
		f.spec[i] = complex(v, 0)
	}

	if err := f.plan.Forward(f.spec, f.spec); err != nil {
		return fmt.Errorf("pitch: forward FFT failed: %w", err)
	}

	for i, c := range f.spec {
		f.re[i] = real(c)
		f.im[i] = imag(c)
	}
	vecmath.Power(f.power, f.re, f.im)

	for i, p := range f.power {
		f.spec[i] = complex(p, 0)
	}

	if err := f.plan.Inverse(f.spec, f.spec); err != nil {
		return fmt.Errorf("pitch: inverse FFT failed: %w", err)
	}

	var energy float64
	for _, v := range x {
		energy += v * v
	}

	r0 := real(f.spec[0])
	if r0 <= 0 || energy <= 0 {
		for i := range corr {
			corr[i] = 0
		}
		return nil
	}
	scale := energy / r0

	m := 2 * energy
	corr[0] = 1
	for lag := 1; lag < len(corr); lag++ {
		m -= x[lag-1]*x[lag-1] + x[n-lag]*x[n-lag]
		if m <= 0 {
			corr[lag] = 0
			continue
		}
		corr[lag] = 2 * real(f.spec[lag]) * scale / m
	}

	return nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
