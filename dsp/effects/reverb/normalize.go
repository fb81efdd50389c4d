package reverb

import "math"

const (
	gainCalibration           = 0.00125
	gainCalibrationSampleRate = 44100.0
	minPower                  = 0.000125
)

// NormalizationScale returns the equal-power scale applied to an impulse
// before convolution, so that impulses of different length and level give a
// comparable wet level. The reference level is calibrated at 44.1 kHz.
func NormalizationScale(ir ImpulseResponse) float64 {
	n := ir.Len()
	if n == 0 || len(ir.Channels) == 0 {
		return 1
	}

	var power float64
	for _, ch := range ir.Channels {
		for _, v := range ch {
			power += v * v
		}
	}

	power = math.Sqrt(power / float64(len(ir.Channels)*n))
	if math.IsNaN(power) || math.IsInf(power, 0) || power < minPower {
		power = minPower
	}

	scale := gainCalibration / power
	if ir.SampleRate > 0 {
		scale *= gainCalibrationSampleRate / ir.SampleRate
	}

	return scale
}

// Scaled returns a copy of ir with every sample multiplied by scale.
func (ir ImpulseResponse) Scaled(scale float64) ImpulseResponse {
	out := ir
	out.Channels = make([][]float64, len(ir.Channels))
	for ch, data := range ir.Channels {
		scaled := make([]float64, len(data))
		for i, v := range data {
			scaled[i] = v * scale
		}
		out.Channels[ch] = scaled
	}
	return out
}
