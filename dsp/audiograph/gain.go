package audiograph

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// GainNode multiplies its input by a per-sample gain.
type GainNode struct {
	gain  *Param
	curve []float64
}

// NewGain creates a gain node with the given initial linear gain.
func (c *Context) NewGain(initial float64) *GainNode {
	return &GainNode{
		gain:  NewParam(c.cfg.SampleRate, initial, -math.MaxFloat32, math.MaxFloat32),
		curve: make([]float64, c.cfg.BlockSize),
	}
}

// Gain returns the linear gain control.
func (g *GainNode) Gain() *Param { return g.gain }

// Process implements Node.
func (g *GainNode) Process(q Quantum, in, out [][]float64) {
	curve := g.curve[:q.Frames]
	g.gain.fill(q, curve)

	for ch := range out {
		copy(out[ch], in[ch])
		vecmath.MulBlockInPlace(out[ch], curve)
	}
}
