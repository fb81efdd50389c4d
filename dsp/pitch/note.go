package pitch

import "math"

// ReferenceA4 is the tuning reference in Hz.
const ReferenceA4 = 440.0

// midiA4 is the semitone index of A4 in the MIDI numbering used for mapping.
const midiA4 = 69

// NoteNames is the chromatic table indexed by semitone modulo 12, starting at C.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Estimate is a detected pitch expressed as a note and tuning offset.
type Estimate struct {
	Frequency float64 // Hz
	Note      string  // chromatic note name, e.g. "A" or "C#"
	Octave    int     // scientific pitch notation octave (A4 = 440 Hz)
	Cents     int     // deviation from the nearest note, truncated toward zero
}

// NoteFromFrequency maps freq onto the nearest equal-tempered note.
// It returns ok=false for non-positive or non-finite frequencies.
func NoteFromFrequency(freq float64) (Estimate, bool) {
	if !(freq > 0) || math.IsInf(freq, 0) {
		return Estimate{}, false
	}

	semitones := 12 * math.Log2(freq/ReferenceA4)
	nearest := math.Round(semitones)
	index := int(nearest) + midiA4

	return Estimate{
		Frequency: freq,
		Note:      NoteNames[((index%12)+12)%12],
		Octave:    floorDiv(index, 12) - 1,
		Cents:     int((semitones - nearest) * 100),
	}, true
}

// FrequencyOf returns the equal-tempered frequency of a note name and octave.
func FrequencyOf(note string, octave int) (float64, bool) {
	for i, name := range NoteNames {
		if name == note {
			index := (octave+1)*12 + i
			return ReferenceA4 * math.Pow(2, float64(index-midiA4)/12), true
		}
	}

	return 0, false
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
