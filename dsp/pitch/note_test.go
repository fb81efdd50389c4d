package pitch

import (
	"math"
	"testing"
)

func TestNoteFromFrequency(t *testing.T) {
	tests := []struct {
		freq   float64
		note   string
		octave int
		cents  int
	}{
		{440, "A", 4, 0},
		{110, "A", 2, 0},
		{261.6256, "C", 4, 0},
		{82.41, "E", 2, 0},
		{27.5, "A", 0, 0},
		{16.3516, "C", 0, 0},
		{8.1758, "C", -1, 0},
		{446.0, "A", 4, 23},
		{434.0, "A", 4, -23},
		{466.1638, "A#", 4, 0},
	}

	for _, tt := range tests {
		est, ok := NoteFromFrequency(tt.freq)
		if !ok {
			t.Fatalf("NoteFromFrequency(%v) not ok", tt.freq)
		}
		if est.Note != tt.note || est.Octave != tt.octave {
			t.Errorf("NoteFromFrequency(%v) = %s%d, want %s%d", tt.freq, est.Note, est.Octave, tt.note, tt.octave)
		}
		if est.Cents != tt.cents {
			t.Errorf("NoteFromFrequency(%v) cents = %d, want %d", tt.freq, est.Cents, tt.cents)
		}
		if est.Frequency != tt.freq {
			t.Errorf("Frequency = %v, want %v", est.Frequency, tt.freq)
		}
	}
}

func TestNoteFromFrequencyA4IsExact(t *testing.T) {
	est, _ := NoteFromFrequency(ReferenceA4)
	if est != (Estimate{Frequency: 440, Note: "A", Octave: 4, Cents: 0}) {
		t.Fatalf("A4 mapped to %+v", est)
	}
}

func TestNoteFromFrequencyCentsTruncateTowardZero(t *testing.T) {
	// 12*log2(f/440) = -0.057 semitones -> -5.7 cents -> -5 (not -6).
	f := 440 * math.Pow(2, -0.057/12)
	est, _ := NoteFromFrequency(f)
	if est.Cents != -5 {
		t.Fatalf("cents = %d, want -5", est.Cents)
	}
}

func TestNoteFromFrequencyInvalid(t *testing.T) {
	for _, f := range []float64{0, -440, math.NaN(), math.Inf(1)} {
		if _, ok := NoteFromFrequency(f); ok {
			t.Fatalf("NoteFromFrequency(%v) should not be ok", f)
		}
	}
}

func TestFrequencyOf(t *testing.T) {
	f, ok := FrequencyOf("A", 4)
	if !ok || math.Abs(f-440) > 1e-9 {
		t.Fatalf("FrequencyOf(A4) = %v, %v", f, ok)
	}

	f, ok = FrequencyOf("E", 2)
	if !ok || math.Abs(f-82.4069) > 1e-3 {
		t.Fatalf("FrequencyOf(E2) = %v, %v", f, ok)
	}

	if _, ok := FrequencyOf("H", 4); ok {
		t.Fatal("unknown note name should not be ok")
	}
}

func TestFloorDiv(t *testing.T) {
	cases := [][3]int{{7, 12, 0}, {12, 12, 1}, {-1, 12, -1}, {-12, 12, -1}, {-13, 12, -2}}
	for _, c := range cases {
		if got := floorDiv(c[0], c[1]); got != c[2] {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c[0], c[1], got, c[2])
		}
	}
}
