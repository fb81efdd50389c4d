package reverb

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// ImpulseChannels is the channel count of synthesized impulse responses.
	ImpulseChannels = 2

	// tailSeconds is added to the decay time to get the buffer duration.
	tailSeconds = 0.5
)

// ErrInvalidImpulse is returned for impulse parameters that cannot produce
// a buffer.
var ErrInvalidImpulse = errors.New("reverb: invalid impulse parameters")

// ImpulseResponse is an immutable multi-channel impulse buffer.
type ImpulseResponse struct {
	Channels        [][]float64
	SampleRate      float64
	Decay           float64 // seconds
	PreDelaySamples int
}

// Len returns the number of frames in the impulse response.
func (ir ImpulseResponse) Len() int {
	if len(ir.Channels) == 0 {
		return 0
	}
	return len(ir.Channels[0])
}

// Duration returns the impulse length in seconds.
func (ir ImpulseResponse) Duration() float64 {
	if ir.SampleRate <= 0 {
		return 0
	}
	return float64(ir.Len()) / ir.SampleRate
}

// SynthesizeImpulse generates a stereo impulse of (decay + 0.5) seconds.
// The first preDelayMs milliseconds are silent; after that each channel is
// independent uniform noise in [-1, 1) scaled by exp(-t/decay), with t in
// seconds from the end of the pre-delay.
//
// rng supplies the noise. A nil rng uses the package-level generator.
func SynthesizeImpulse(sampleRate, decay, preDelayMs float64, rng *rand.Rand) (ImpulseResponse, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return ImpulseResponse{}, fmt.Errorf("%w: sample rate %v", ErrInvalidImpulse, sampleRate)
	}
	if decay <= 0 || math.IsNaN(decay) || math.IsInf(decay, 0) {
		return ImpulseResponse{}, fmt.Errorf("%w: decay %v", ErrInvalidImpulse, decay)
	}
	if preDelayMs < 0 || math.IsNaN(preDelayMs) || math.IsInf(preDelayMs, 0) {
		return ImpulseResponse{}, fmt.Errorf("%w: pre-delay %v", ErrInvalidImpulse, preDelayMs)
	}

	length := int((decay + tailSeconds) * sampleRate)
	preDelay := min(int(preDelayMs*0.001*sampleRate), length)

	noise := rand.Float64
	if rng != nil {
		noise = rng.Float64
	}

	channels := make([][]float64, ImpulseChannels)
	for ch := range channels {
		data := make([]float64, length)
		for i := preDelay; i < length; i++ {
			t := float64(i-preDelay) / sampleRate
			data[i] = (noise()*2 - 1) * math.Exp(-t/decay)
		}
		channels[ch] = data
	}

	return ImpulseResponse{
		Channels:        channels,
		SampleRate:      sampleRate,
		Decay:           decay,
		PreDelaySamples: preDelay,
	}, nil
}
