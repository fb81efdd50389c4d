package biquad

import (
	"fmt"
	"testing"
)

var benchCoeffs = Coefficients{B0: 1.05, B1: -1.9, B2: 0.86, A1: -1.9, A2: 0.91}

func BenchmarkProcessBlock(b *testing.B) {
	for _, size := range []int{128, 1024} {
		b.Run(fmt.Sprintf("N=%d", size), func(b *testing.B) {
			s := NewSection(benchCoeffs)
			buf := make([]float64, size)
			for i := range buf {
				buf[i] = float64(i%64) / 64
			}
			b.SetBytes(int64(size * 8))
			for b.Loop() {
				s.ProcessBlock(buf)
			}
		})
	}
}
