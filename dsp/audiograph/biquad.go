package audiograph

import (
	"fmt"

	"github.com/cwbudde/algo-studio/dsp/filter/biquad"
	"github.com/cwbudde/algo-studio/dsp/filter/design"
)

// FilterType selects the response of a BiquadNode.
type FilterType int

const (
	LowShelf FilterType = iota
	Peaking
	HighShelf
)

// String returns the filter type name.
func (t FilterType) String() string {
	switch t {
	case LowShelf:
		return "lowshelf"
	case Peaking:
		return "peaking"
	case HighShelf:
		return "highshelf"
	default:
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
}

// BiquadNode is a second-order shelving or peaking filter. Frequency, gain
// and Q are evaluated once per quantum; coefficients are only recomputed
// when one of them changed.
type BiquadNode struct {
	kind       FilterType
	sampleRate float64

	frequency *Param
	gain      *Param // dB
	q         *Param

	sections []*biquad.Section
	last     [3]float64
	designed bool
}

// NewBiquad creates a filter of the given type at 350 Hz, 0 dB gain and
// Q 1/sqrt(2). The frequency is limited to just below Nyquist.
func (c *Context) NewBiquad(kind FilterType) *BiquadNode {
	sr := c.cfg.SampleRate

	sections := make([]*biquad.Section, c.cfg.Channels)
	for ch := range sections {
		sections[ch] = biquad.NewSection(biquad.Identity)
	}

	return &BiquadNode{
		kind:       kind,
		sampleRate: sr,
		frequency:  NewParam(sr, 350, 10, 0.49*sr),
		gain:       NewParam(sr, 0, -40, 40),
		q:          NewParam(sr, design.ShelfQ, 0.0001, 1000),
		sections:   sections,
	}
}

// Type returns the filter response type.
func (b *BiquadNode) Type() FilterType { return b.kind }

// Frequency returns the corner or center frequency control in Hz.
func (b *BiquadNode) Frequency() *Param { return b.frequency }

// Gain returns the gain control in dB.
func (b *BiquadNode) Gain() *Param { return b.gain }

// Q returns the quality factor control. Shelving types ignore it and use
// a fixed 1/sqrt(2) slope.
func (b *BiquadNode) Q() *Param { return b.q }

// Coefficients returns the coefficients for the current control targets.
func (b *BiquadNode) Coefficients() biquad.Coefficients {
	return b.design(b.frequency.Target(), b.gain.Target(), b.q.Target())
}

// Process implements Node.
func (b *BiquadNode) Process(q Quantum, in, out [][]float64) {
	freq := b.frequency.kValue(q)
	gain := b.gain.kValue(q)
	qv := b.q.kValue(q)

	if key := [3]float64{freq, gain, qv}; !b.designed || key != b.last {
		coeffs := b.design(freq, gain, qv)
		for _, s := range b.sections {
			s.SetCoefficients(coeffs)
		}
		b.last = key
		b.designed = true
	}

	for ch := range out {
		b.sections[ch].ProcessBlockTo(out[ch], in[ch])
	}
}

func (b *BiquadNode) design(freq, gain, q float64) biquad.Coefficients {
	switch b.kind {
	case LowShelf:
		return design.LowShelf(freq, gain, design.ShelfQ, b.sampleRate)
	case HighShelf:
		return design.HighShelf(freq, gain, design.ShelfQ, b.sampleRate)
	default:
		return design.Peak(freq, gain, q, b.sampleRate)
	}
}
