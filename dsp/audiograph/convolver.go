package audiograph

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-studio/dsp/effects/reverb"
)

// ConvolverNode convolves its input with an impulse response. Until an
// impulse is set the node outputs silence.
//
// SetImpulse builds a new engine off the render path and swaps it in
// atomically; the previous engine's tail is dropped.
type ConvolverNode struct {
	channels  int
	blockSize int
	normalize bool

	engine atomic.Pointer[reverb.Convolver]
}

// NewConvolver creates a convolver node with equal-power normalization
// enabled.
func (c *Context) NewConvolver() *ConvolverNode {
	return &ConvolverNode{
		channels:  c.cfg.Channels,
		blockSize: c.cfg.BlockSize,
		normalize: true,
	}
}

// SetNormalize controls whether impulses passed to subsequent SetImpulse
// calls are scaled with reverb.NormalizationScale.
func (n *ConvolverNode) SetNormalize(normalize bool) { n.normalize = normalize }

// SetImpulse replaces the impulse response. Impulses with fewer channels
// than the context repeat their last channel; extra channels are dropped.
func (n *ConvolverNode) SetImpulse(ir reverb.ImpulseResponse) error {
	if ir.Len() == 0 {
		return errors.New("audiograph: empty impulse response")
	}

	if n.normalize {
		ir = ir.Scaled(reverb.NormalizationScale(ir))
	}

	fitted := ir
	fitted.Channels = make([][]float64, n.channels)
	for ch := range fitted.Channels {
		fitted.Channels[ch] = ir.Channels[min(ch, len(ir.Channels)-1)]
	}

	engine, err := reverb.NewConvolver(fitted, n.blockSize)
	if err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	n.engine.Store(engine)
	return nil
}

// Impulse returns the impulse currently in use and whether one is set.
func (n *ConvolverNode) Impulse() (reverb.ImpulseResponse, bool) {
	engine := n.engine.Load()
	if engine == nil {
		return reverb.ImpulseResponse{}, false
	}
	return engine.Impulse(), true
}

// Process implements Node.
func (n *ConvolverNode) Process(_ Quantum, in, out [][]float64) {
	engine := n.engine.Load()
	if engine == nil || engine.Process(out, in) != nil {
		for ch := range out {
			clear(out[ch])
		}
	}
}
