package audiograph

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-studio/dsp/effects/dynamics"
)

// CompressorNode is a stereo-linked soft-knee compressor. Controls are
// evaluated once per quantum. The node applies no makeup gain.
type CompressorNode struct {
	comp *dynamics.Compressor

	threshold *Param // dB
	knee      *Param // dB
	ratio     *Param
	attack    *Param // seconds
	release   *Param // seconds

	reduction atomic.Uint64 // float64 bits, dB
}

// NewCompressor creates a compressor node with threshold -24 dB, knee 30 dB,
// ratio 12, attack 3 ms and release 250 ms.
func (c *Context) NewCompressor() *CompressorNode {
	sr := c.cfg.SampleRate

	// The context sample rate has been validated, so this cannot fail.
	comp, _ := dynamics.NewCompressor(sr)

	return &CompressorNode{
		comp:      comp,
		threshold: NewParam(sr, -24, dynamics.MinThresholdDB, dynamics.MaxThresholdDB),
		knee:      NewParam(sr, 30, dynamics.MinKneeDB, dynamics.MaxKneeDB),
		ratio:     NewParam(sr, 12, dynamics.MinRatio, dynamics.MaxRatio),
		attack:    NewParam(sr, 0.003, dynamics.MinTime, dynamics.MaxTime),
		release:   NewParam(sr, 0.25, dynamics.MinTime, dynamics.MaxTime),
	}
}

// Threshold returns the threshold control in dB.
func (n *CompressorNode) Threshold() *Param { return n.threshold }

// Knee returns the knee width control in dB.
func (n *CompressorNode) Knee() *Param { return n.knee }

// Ratio returns the ratio control.
func (n *CompressorNode) Ratio() *Param { return n.ratio }

// Attack returns the attack control in seconds.
func (n *CompressorNode) Attack() *Param { return n.attack }

// Release returns the release control in seconds.
func (n *CompressorNode) Release() *Param { return n.release }

// Reduction returns the deepest gain reduction of the last quantum in dB
// (zero or negative).
func (n *CompressorNode) Reduction() float64 {
	return math.Float64frombits(n.reduction.Load())
}

// Process implements Node.
func (n *CompressorNode) Process(q Quantum, in, out [][]float64) {
	// Values are already range-checked by their Params.
	_ = n.comp.SetThreshold(n.threshold.kValue(q))
	_ = n.comp.SetKnee(n.knee.kValue(q))
	_ = n.comp.SetRatio(n.ratio.kValue(q))
	_ = n.comp.SetAttack(n.attack.kValue(q))
	_ = n.comp.SetRelease(n.release.kValue(q))

	for ch := range out {
		copy(out[ch], in[ch])
	}

	n.comp.ResetMetrics()
	n.comp.ProcessLinked(out)

	reduction := 20 * math.Log10(n.comp.GetMetrics().GainReduction)
	n.reduction.Store(math.Float64bits(reduction))
}
