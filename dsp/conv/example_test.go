package conv_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-studio/dsp/conv"
)

func ExampleDirect() {
	// Simple moving average filter
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(signal, kernel)

	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExamplePartitioned() {
	// Two-tap echo: dry signal plus a copy delayed by 4 samples at half level.
	kernel := []float64{1, 0, 0, 0, 0.5}

	p, err := conv.NewPartitioned(kernel, 4)
	if err != nil {
		panic(err)
	}

	in := []float64{1, 0, 0, 0}
	out := make([]float64, 4)

	_ = p.ProcessBlock(out, in)
	fmt.Println(rounded(out))

	_ = p.ProcessBlock(out, make([]float64, 4))
	fmt.Println(rounded(out))

	// Output:
	// [1 0 0 0]
	// [0.5 0 0 0]
}

// rounded drops FFT round-off so the example output is stable.
func rounded(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		r := math.Round(v*10) / 10
		if r == 0 { // no negative zero
			r = 0
		}
		out[i] = r
	}
	return out
}
