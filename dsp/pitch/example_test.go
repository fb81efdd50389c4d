package pitch_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-studio/dsp/pitch"
)

func ExampleDetector_Detect() {
	const sampleRate = 44100.0

	buf := make([]float64, 2048)
	for i := range buf {
		buf[i] = 0.5 * math.Sin(2*math.Pi*110*float64(i)/sampleRate)
	}

	est, ok := pitch.NewDetector().Detect(buf, sampleRate)
	fmt.Println(ok, est.Note, est.Octave)

	_, ok = pitch.NewDetector().Detect(make([]float64, 2048), sampleRate)
	fmt.Println(ok)

	// Output:
	// true A 2
	// false
}

func ExampleNoteFromFrequency() {
	est, _ := pitch.NoteFromFrequency(440)
	fmt.Printf("%s%d %+d cents\n", est.Note, est.Octave, est.Cents)

	// Output:
	// A4 +0 cents
}
