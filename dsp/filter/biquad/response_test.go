package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

// evalResponse evaluates H(z) on the unit circle.
func evalResponse(c Coefficients, freq, sr float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freq/sr))
	z2 := z1 * z1
	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := 1 + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

func TestMagnitudeSquaredMatchesTransferFunction(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	sr := 48000.0

	for _, freq := range []float64{0, 100, 1000, 5000, 10000, 23999} {
		h := cmplx.Abs(evalResponse(c, freq, sr))
		if got, want := c.MagnitudeSquared(freq, sr), h*h; math.Abs(got-want) > 1e-10 {
			t.Errorf("freq=%v: MagnitudeSquared=%.15f, |H|^2=%.15f", freq, got, want)
		}
	}
}

func TestMagnitudeDB(t *testing.T) {
	c := Coefficients{B0: 2}
	if got := c.MagnitudeDB(1000, 48000); math.Abs(got-20*math.Log10(2)) > 1e-12 {
		t.Fatalf("MagnitudeDB = %v, want %v", got, 20*math.Log10(2))
	}
}
