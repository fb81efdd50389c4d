package effectchain

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/algo-studio/dsp/core"
)

// EQUpdate is a partial EQ change. Nil fields keep their stored value.
type EQUpdate struct {
	LowGain  *float64 `json:"lowGain,omitempty"`
	MidGain  *float64 `json:"midGain,omitempty"`
	HighGain *float64 `json:"highGain,omitempty"`
	LowFreq  *float64 `json:"lowFreq,omitempty"`
	HighFreq *float64 `json:"highFreq,omitempty"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

// CompressorUpdate is a partial compressor change.
type CompressorUpdate struct {
	Threshold  *float64 `json:"threshold,omitempty"`
	Ratio      *float64 `json:"ratio,omitempty"`
	Attack     *float64 `json:"attack,omitempty"`
	Release    *float64 `json:"release,omitempty"`
	Knee       *float64 `json:"knee,omitempty"`
	MakeupGain *float64 `json:"makeupGain,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"`
}

// ReverbUpdate is a partial reverb change.
type ReverbUpdate struct {
	WetDry   *float64 `json:"wetDry,omitempty"`
	Decay    *float64 `json:"decay,omitempty"`
	PreDelay *float64 `json:"preDelay,omitempty"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

// Update groups partial changes for all stages.
type Update struct {
	EQ         *EQUpdate         `json:"eq,omitempty"`
	Compressor *CompressorUpdate `json:"compressor,omitempty"`
	Reverb     *ReverbUpdate     `json:"reverb,omitempty"`
}

// Float returns a pointer to v, for building updates in code.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v, for building updates in code.
func Bool(v bool) *bool { return &v }

// ParseUpdate decodes a JSON preset. Fields that are absent leave stored
// values unchanged when the update is applied.
func ParseUpdate(data []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return Update{}, fmt.Errorf("effectchain: invalid preset json: %w", err)
	}
	return u, nil
}

// FullUpdate returns an update that sets every field to the values in p.
func FullUpdate(p Params) Update {
	return Update{
		EQ: &EQUpdate{
			LowGain:  Float(p.EQ.LowGain),
			MidGain:  Float(p.EQ.MidGain),
			HighGain: Float(p.EQ.HighGain),
			LowFreq:  Float(p.EQ.LowFreq),
			HighFreq: Float(p.EQ.HighFreq),
			Enabled:  Bool(p.EQ.Enabled),
		},
		Compressor: &CompressorUpdate{
			Threshold:  Float(p.Compressor.Threshold),
			Ratio:      Float(p.Compressor.Ratio),
			Attack:     Float(p.Compressor.Attack),
			Release:    Float(p.Compressor.Release),
			Knee:       Float(p.Compressor.Knee),
			MakeupGain: Float(p.Compressor.MakeupGain),
			Enabled:    Bool(p.Compressor.Enabled),
		},
		Reverb: &ReverbUpdate{
			WetDry:   Float(p.Reverb.WetDry),
			Decay:    Float(p.Reverb.Decay),
			PreDelay: Float(p.Reverb.PreDelay),
			Enabled:  Bool(p.Reverb.Enabled),
		},
	}
}

// Apply returns p with the update merged in and clamped. NaN and Inf
// values keep the stored value.
func (u EQUpdate) Apply(p EQParams) EQParams {
	set(&p.LowGain, u.LowGain, MinEQGain, MaxEQGain)
	set(&p.MidGain, u.MidGain, MinEQGain, MaxEQGain)
	set(&p.HighGain, u.HighGain, MinEQGain, MaxEQGain)
	set(&p.LowFreq, u.LowFreq, MinLowFreq, MaxLowFreq)
	set(&p.HighFreq, u.HighFreq, MinHighFreq, MaxHighFreq)
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	return p
}

// Apply returns p with the update merged in and clamped.
func (u CompressorUpdate) Apply(p CompressorParams) CompressorParams {
	set(&p.Threshold, u.Threshold, MinThreshold, MaxThreshold)
	set(&p.Ratio, u.Ratio, MinRatio, MaxRatio)
	set(&p.Attack, u.Attack, MinTime, MaxTime)
	set(&p.Release, u.Release, MinTime, MaxTime)
	set(&p.Knee, u.Knee, MinKnee, MaxKnee)
	set(&p.MakeupGain, u.MakeupGain, MinMakeup, MaxMakeup)
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	return p
}

// Apply returns p with the update merged in and clamped.
func (u ReverbUpdate) Apply(p ReverbParams) ReverbParams {
	set(&p.WetDry, u.WetDry, MinWetDry, MaxWetDry)
	set(&p.Decay, u.Decay, MinDecay, MaxDecay)
	set(&p.PreDelay, u.PreDelay, MinPreDelay, MaxPreDelay)
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	return p
}

// Apply returns p with every present stage update merged in.
func (u Update) Apply(p Params) Params {
	if u.EQ != nil {
		p.EQ = u.EQ.Apply(p.EQ)
	}
	if u.Compressor != nil {
		p.Compressor = u.Compressor.Apply(p.Compressor)
	}
	if u.Reverb != nil {
		p.Reverb = u.Reverb.Apply(p.Reverb)
	}
	return p
}

// changesImpulse reports whether the update touches the impulse shape.
func (u ReverbUpdate) changesImpulse() bool {
	return u.Decay != nil || u.PreDelay != nil
}

func set(dst *float64, v *float64, lo, hi float64) {
	if v == nil {
		return
	}
	*dst = core.ClampFinite(*v, lo, hi, *dst)
}
