package pitch

import "math"

const (
	inTuneCents = 5
	closeCents  = 15
)

// GuitarString is one open string of a tuning.
type GuitarString struct {
	Number    int // 6 = lowest string
	Note      string
	Octave    int
	Frequency float64
}

// StandardTuning is E2 A2 D3 G3 B3 E4, lowest string first.
var StandardTuning = []GuitarString{
	{Number: 6, Note: "E", Octave: 2, Frequency: 82.41},
	{Number: 5, Note: "A", Octave: 2, Frequency: 110.00},
	{Number: 4, Note: "D", Octave: 3, Frequency: 146.83},
	{Number: 3, Note: "G", Octave: 3, Frequency: 196.00},
	{Number: 2, Note: "B", Octave: 3, Frequency: 246.94},
	{Number: 1, Note: "E", Octave: 4, Frequency: 329.63},
}

// ClosestString returns the string in tuning whose open frequency is nearest
// to freq. An empty tuning yields the zero GuitarString.
func ClosestString(tuning []GuitarString, freq float64) GuitarString {
	if len(tuning) == 0 {
		return GuitarString{}
	}

	best := tuning[0]
	bestDiff := math.Abs(freq - best.Frequency)
	for _, s := range tuning[1:] {
		if d := math.Abs(freq - s.Frequency); d < bestDiff {
			best, bestDiff = s, d
		}
	}

	return best
}

// InTune reports whether a cents offset is within ±5 cents.
func InTune(cents int) bool {
	return absInt(cents) < inTuneCents
}

// Close reports whether a cents offset is within ±15 cents.
func Close(cents int) bool {
	return absInt(cents) < closeCents
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
