package waveform

import "math"

// DefaultBars is the number of peaks drawn per track.
const DefaultBars = 100

// minPeakNorm keeps near-silent tracks from being scaled up to full height.
const minPeakNorm = 0.01

// ExtractPeaks splits samples into bars equal blocks of len(samples)/bars
// frames and returns the maximum absolute value of each, divided by
// max(largest peak, 0.01). Trailing samples that do not fill a block are
// ignored, and fewer samples than bars yields all zeros.
func ExtractPeaks(samples []float64, bars int) []float64 {
	if bars <= 0 {
		return nil
	}

	peaks := make([]float64, bars)
	block := len(samples) / bars
	if block == 0 {
		return peaks
	}

	norm := minPeakNorm
	for i := range peaks {
		var peak float64
		for _, v := range samples[i*block : (i+1)*block] {
			peak = max(peak, math.Abs(v))
		}
		peaks[i] = peak
		norm = max(norm, peak)
	}

	for i := range peaks {
		peaks[i] /= norm
	}

	return peaks
}
