package effectchain

import "github.com/cwbudde/algo-studio/dsp/core"

// Parameter ranges. Stored values are always inside these bounds.
const (
	MinEQGain    = -12.0
	MaxEQGain    = 12.0
	MinLowFreq   = 20.0
	MaxLowFreq   = 500.0
	MinHighFreq  = 2000.0
	MaxHighFreq  = 20000.0
	MidFrequency = 1000.0
	MidQ         = 0.7

	MinThreshold = -60.0
	MaxThreshold = 0.0
	MinRatio     = 1.0
	MaxRatio     = 20.0
	MinTime      = 0.0
	MaxTime      = 1.0
	MinKnee      = 0.0
	MaxKnee      = 40.0
	MinMakeup    = 0.0
	MaxMakeup    = 12.0

	MinWetDry   = 0.0
	MaxWetDry   = 1.0
	MinDecay    = 0.1
	MaxDecay    = 10.0
	MinPreDelay = 0.0
	MaxPreDelay = 100.0
)

// EQParams configures the three-band equalizer. Gains are in dB and
// frequencies in Hz.
type EQParams struct {
	LowGain  float64 `json:"lowGain"`
	MidGain  float64 `json:"midGain"`
	HighGain float64 `json:"highGain"`
	LowFreq  float64 `json:"lowFreq"`
	HighFreq float64 `json:"highFreq"`
	Enabled  bool    `json:"enabled"`
}

// CompressorParams configures the compressor stage. Threshold, knee and
// makeup gain are in dB; attack and release in seconds.
type CompressorParams struct {
	Threshold  float64 `json:"threshold"`
	Ratio      float64 `json:"ratio"`
	Attack     float64 `json:"attack"`
	Release    float64 `json:"release"`
	Knee       float64 `json:"knee"`
	MakeupGain float64 `json:"makeupGain"`
	Enabled    bool    `json:"enabled"`
}

// ReverbParams configures the convolution reverb. Decay is in seconds and
// PreDelay in milliseconds.
type ReverbParams struct {
	WetDry   float64 `json:"wetDry"`
	Decay    float64 `json:"decay"`
	PreDelay float64 `json:"preDelay"`
	Enabled  bool    `json:"enabled"`
}

// Params is the complete stored state of the chain.
type Params struct {
	EQ         EQParams         `json:"eq"`
	Compressor CompressorParams `json:"compressor"`
	Reverb     ReverbParams     `json:"reverb"`
}

// DefaultParams returns the initial state: every stage disabled with
// musically neutral settings ready for enabling.
func DefaultParams() Params {
	return Params{
		EQ: EQParams{
			LowFreq:  320,
			HighFreq: 3200,
		},
		Compressor: CompressorParams{
			Threshold: -24,
			Ratio:     4,
			Attack:    0.003,
			Release:   0.25,
			Knee:      30,
		},
		Reverb: ReverbParams{
			WetDry:   0.3,
			Decay:    2,
			PreDelay: 20,
		},
	}
}

// Clamped returns p with every numeric field forced into its range.
// Non-finite fields fall back to the default value.
func (p Params) Clamped() Params {
	d := DefaultParams()

	p.EQ.LowGain = core.ClampFinite(p.EQ.LowGain, MinEQGain, MaxEQGain, d.EQ.LowGain)
	p.EQ.MidGain = core.ClampFinite(p.EQ.MidGain, MinEQGain, MaxEQGain, d.EQ.MidGain)
	p.EQ.HighGain = core.ClampFinite(p.EQ.HighGain, MinEQGain, MaxEQGain, d.EQ.HighGain)
	p.EQ.LowFreq = core.ClampFinite(p.EQ.LowFreq, MinLowFreq, MaxLowFreq, d.EQ.LowFreq)
	p.EQ.HighFreq = core.ClampFinite(p.EQ.HighFreq, MinHighFreq, MaxHighFreq, d.EQ.HighFreq)

	c := &p.Compressor
	c.Threshold = core.ClampFinite(c.Threshold, MinThreshold, MaxThreshold, d.Compressor.Threshold)
	c.Ratio = core.ClampFinite(c.Ratio, MinRatio, MaxRatio, d.Compressor.Ratio)
	c.Attack = core.ClampFinite(c.Attack, MinTime, MaxTime, d.Compressor.Attack)
	c.Release = core.ClampFinite(c.Release, MinTime, MaxTime, d.Compressor.Release)
	c.Knee = core.ClampFinite(c.Knee, MinKnee, MaxKnee, d.Compressor.Knee)
	c.MakeupGain = core.ClampFinite(c.MakeupGain, MinMakeup, MaxMakeup, d.Compressor.MakeupGain)

	r := &p.Reverb
	r.WetDry = core.ClampFinite(r.WetDry, MinWetDry, MaxWetDry, d.Reverb.WetDry)
	r.Decay = core.ClampFinite(r.Decay, MinDecay, MaxDecay, d.Reverb.Decay)
	r.PreDelay = core.ClampFinite(r.PreDelay, MinPreDelay, MaxPreDelay, d.Reverb.PreDelay)

	return p
}

// EffectiveParams are the values the processing nodes run with after the
// bypass rules are applied.
type EffectiveParams struct {
	LowGain  float64 // dB
	MidGain  float64 // dB
	HighGain float64 // dB
	LowFreq  float64
	HighFreq float64

	Threshold float64
	Ratio     float64
	Attack    float64
	Release   float64
	Knee      float64
	Makeup    float64 // linear

	Dry float64
	Wet float64
}

// Effective maps stored parameters to node values:
//
//   - a disabled EQ runs all three bands at 0 dB,
//   - a disabled compressor runs at 1:1 with unity makeup,
//   - a disabled reverb runs dry 1, wet 0; an enabled one dry 1-wetDry, wet wetDry.
//
// Stored values are not modified, so re-enabling restores them.
func Effective(p Params) EffectiveParams {
	e := EffectiveParams{
		LowFreq:   p.EQ.LowFreq,
		HighFreq:  p.EQ.HighFreq,
		Threshold: p.Compressor.Threshold,
		Ratio:     MinRatio,
		Attack:    p.Compressor.Attack,
		Release:   p.Compressor.Release,
		Knee:      p.Compressor.Knee,
		Makeup:    1,
		Dry:       1,
		Wet:       0,
	}

	if p.EQ.Enabled {
		e.LowGain = p.EQ.LowGain
		e.MidGain = p.EQ.MidGain
		e.HighGain = p.EQ.HighGain
	}

	if p.Compressor.Enabled {
		e.Ratio = p.Compressor.Ratio
		e.Makeup = core.DBToLinear(p.Compressor.MakeupGain)
	}

	if p.Reverb.Enabled {
		e.Dry = 1 - p.Reverb.WetDry
		e.Wet = p.Reverb.WetDry
	}

	return e
}
