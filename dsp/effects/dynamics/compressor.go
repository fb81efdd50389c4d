package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-studio/dsp/core"
)

const (
	// Default compressor parameters
	defaultCompressorThresholdDB = -24.0
	defaultCompressorRatio       = 4.0
	defaultCompressorKneeDB      = 30.0
	defaultCompressorAttack      = 0.003
	defaultCompressorRelease     = 0.25

	// Parameter ranges. Values outside are clamped.
	MinThresholdDB = -60.0
	MaxThresholdDB = 0.0
	MinRatio       = 1.0
	MaxRatio       = 20.0
	MinKneeDB      = 0.0
	MaxKneeDB      = 40.0
	MinTime        = 0.0
	MaxTime        = 1.0

	// log2Of10Div20 converts decibels to the log2 domain: log2(10) / 20.
	log2Of10Div20 = 0.166096404744
)

// CompressorMetrics holds metering information for visualization and analysis.
type CompressorMetrics struct {
	InputPeak     float64 // Maximum detector level since last reset
	GainReduction float64 // Minimum gain (maximum reduction) since last reset
}

// Compressor is a soft-knee downward compressor with log2-domain gain
// calculation and a peak envelope follower.
//
// The detector is driven by a single level per sample, so a stereo program
// can be linked by feeding the per-frame channel maximum to Step and applying
// the returned gain to every channel. Makeup gain is not applied here.
//
// Compressor is not safe for concurrent use.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attack      float64 // seconds
	release     float64 // seconds
	sampleRate  float64

	envelope float64

	attackCoeff      float64
	releaseCoeff     float64
	thresholdLog2    float64
	kneeWidthLog2    float64
	invKneeWidthLog2 float64
	slope            float64 // 1 - 1/ratio

	metrics CompressorMetrics
}

// NewCompressor creates a compressor with threshold -24 dB, ratio 4:1,
// knee 30 dB, attack 3 ms and release 250 ms.
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}

	c := &Compressor{
		thresholdDB: defaultCompressorThresholdDB,
		ratio:       defaultCompressorRatio,
		kneeDB:      defaultCompressorKneeDB,
		attack:      defaultCompressorAttack,
		release:     defaultCompressorRelease,
		sampleRate:  sampleRate,
		metrics:     CompressorMetrics{GainReduction: 1},
	}

	c.updateCoefficients()
	return c, nil
}

// SetThreshold sets the threshold in dB, clamped to [-60, 0].
// Non-finite values are rejected.
func (c *Compressor) SetThreshold(dB float64) error {
	if !finite(dB) {
		return fmt.Errorf("compressor threshold must be finite: %f", dB)
	}
	c.thresholdDB = core.Clamp(dB, MinThresholdDB, MaxThresholdDB)
	c.updateCoefficients()
	return nil
}

// SetRatio sets the compression ratio, clamped to [1, 20].
// A ratio of 1 disables gain reduction.
func (c *Compressor) SetRatio(ratio float64) error {
	if !finite(ratio) {
		return fmt.Errorf("compressor ratio must be finite: %f", ratio)
	}
	c.ratio = core.Clamp(ratio, MinRatio, MaxRatio)
	c.updateCoefficients()
	return nil
}

// SetKnee sets the soft-knee width in dB, clamped to [0, 40].
// Zero selects a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if !finite(kneeDB) {
		return fmt.Errorf("compressor knee must be finite: %f", kneeDB)
	}
	c.kneeDB = core.Clamp(kneeDB, MinKneeDB, MaxKneeDB)
	c.updateCoefficients()
	return nil
}

// SetAttack sets the attack time in seconds, clamped to [0, 1].
// Zero makes the detector follow rising levels instantly.
func (c *Compressor) SetAttack(seconds float64) error {
	if !finite(seconds) {
		return fmt.Errorf("compressor attack must be finite: %f", seconds)
	}
	c.attack = core.Clamp(seconds, MinTime, MaxTime)
	c.updateTimeConstants()
	return nil
}

// SetRelease sets the release time in seconds, clamped to [0, 1].
func (c *Compressor) SetRelease(seconds float64) error {
	if !finite(seconds) {
		return fmt.Errorf("compressor release must be finite: %f", seconds)
	}
	c.release = core.Clamp(seconds, MinTime, MaxTime)
	c.updateTimeConstants()
	return nil
}

// SetSampleRate updates the sample rate and recalculates time constants.
func (c *Compressor) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !finite(sampleRate) {
		return fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}
	c.sampleRate = sampleRate
	c.updateTimeConstants()
	return nil
}

// Threshold returns the current threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the current compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the current knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the attack time in seconds.
func (c *Compressor) Attack() float64 { return c.attack }

// Release returns the release time in seconds.
func (c *Compressor) Release() float64 { return c.release }

// SampleRate returns the current sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// Envelope returns the current detector level.
func (c *Compressor) Envelope() float64 { return c.envelope }

// Step advances the envelope follower with a detector level and returns
// the gain to apply to the corresponding frame.
func (c *Compressor) Step(level float64) float64 {
	level = math.Abs(level)

	if level > c.envelope {
		c.envelope += (level - c.envelope) * c.attackCoeff
	} else {
		c.envelope = level + (c.envelope-level)*c.releaseCoeff
	}
	c.envelope = core.FlushDenormals(c.envelope)

	gain := c.GainFor(c.envelope)
	c.updateMetrics(level, gain)

	return gain
}

// ProcessSample compresses one mono sample.
func (c *Compressor) ProcessSample(input float64) float64 {
	return input * c.Step(input)
}

// ProcessInPlace compresses a mono buffer in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] *= c.Step(buf[i])
	}
}

// ProcessLinked compresses all channels with a shared detector driven by
// the per-frame maximum absolute level. Channels shorter than the first
// are left partially unprocessed.
func (c *Compressor) ProcessLinked(channels [][]float64) {
	if len(channels) == 0 {
		return
	}

	frames := len(channels[0])
	for i := range frames {
		var level float64
		for _, ch := range channels {
			if i < len(ch) {
				level = max(level, math.Abs(ch[i]))
			}
		}

		gain := c.Step(level)
		for _, ch := range channels {
			if i < len(ch) {
				ch[i] *= gain
			}
		}
	}
}

// CalculateOutputLevel returns the steady-state output magnitude for a
// given input magnitude. Useful for plotting the static curve.
func (c *Compressor) CalculateOutputLevel(inputMagnitude float64) float64 {
	inputMagnitude = math.Abs(inputMagnitude)
	return inputMagnitude * c.GainFor(inputMagnitude)
}

// Reset clears the envelope follower and metrics.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.ResetMetrics()
}

// GetMetrics returns current metering values.
func (c *Compressor) GetMetrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears metering state.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{GainReduction: 1}
}

func (c *Compressor) updateCoefficients() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20

	if c.kneeDB > 0 {
		c.invKneeWidthLog2 = 1.0 / c.kneeWidthLog2
	} else {
		c.invKneeWidthLog2 = 0
	}

	c.slope = 1.0 - 1.0/c.ratio

	c.updateTimeConstants()
}

func (c *Compressor) updateTimeConstants() {
	c.attackCoeff = timeCoefficient(c.attack, c.sampleRate)
	c.releaseCoeff = 1.0 - timeCoefficient(c.release, c.sampleRate)
}

// timeCoefficient returns 1 - exp(-ln2 / (t * sr)), or 1 for t == 0.
func timeCoefficient(seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return 1.0 - math.Exp(-math.Ln2/(seconds*sampleRate))
}

// GainFor computes the static gain for a detector level using a quadratic
// soft knee centered on the threshold.
func (c *Compressor) GainFor(level float64) float64 {
	if level <= 0 || c.slope == 0 {
		return 1.0
	}

	overshoot := mathLog2(level) - c.thresholdLog2

	if c.kneeDB <= 0 {
		if overshoot <= 0 {
			return 1.0
		}
		return mathPower2(-overshoot * c.slope)
	}

	halfWidth := c.kneeWidthLog2 * 0.5

	var effective float64
	switch {
	case overshoot < -halfWidth:
		return 1.0
	case overshoot > halfWidth:
		effective = overshoot
	default:
		// (overshoot + w/2)^2 / (2w)
		scratch := overshoot + halfWidth
		effective = scratch * scratch * 0.5 * c.invKneeWidthLog2
	}

	return mathPower2(-effective * c.slope)
}

func (c *Compressor) updateMetrics(level, gain float64) {
	if level > c.metrics.InputPeak {
		c.metrics.InputPeak = level
	}
	if gain < c.metrics.GainReduction {
		c.metrics.GainReduction = gain
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
