package reverb

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-studio/dsp/conv"
)

// Convolver produces the wet signal of a convolution reverb. Each impulse
// channel gets its own partitioned convolver. A mono input feeds every
// impulse channel; otherwise input channel i feeds impulse channel i.
//
// Convolver is not safe for concurrent use. Callers that need to replace the
// impulse while rendering build a new Convolver and swap it in.
type Convolver struct {
	engines   []*conv.Partitioned
	blockSize int
	ir        ImpulseResponse
}

// NewConvolver creates a convolver for ir processing blockSize frames per
// call.
func NewConvolver(ir ImpulseResponse, blockSize int) (*Convolver, error) {
	if ir.Len() == 0 {
		return nil, errors.New("reverb: empty impulse response")
	}

	engines := make([]*conv.Partitioned, len(ir.Channels))
	for ch, kernel := range ir.Channels {
		engine, err := conv.NewPartitioned(kernel, blockSize)
		if err != nil {
			return nil, fmt.Errorf("reverb: failed to create convolution engine: %w", err)
		}
		engines[ch] = engine
	}

	return &Convolver{
		engines:   engines,
		blockSize: blockSize,
		ir:        ir,
	}, nil
}

// Process convolves src into dst. dst must have one buffer per impulse
// channel and every buffer must hold BlockSize frames. src may alias dst
// only when it has the same channel count.
func (c *Convolver) Process(dst, src [][]float64) error {
	if len(src) == 0 {
		return errors.New("reverb: no input channels")
	}
	if len(dst) != len(c.engines) {
		return fmt.Errorf("reverb: want %d output channels, got %d", len(c.engines), len(dst))
	}

	for ch, engine := range c.engines {
		in := src[0]
		if len(src) > 1 {
			in = src[min(ch, len(src)-1)]
		}

		if err := engine.ProcessBlock(dst[ch], in); err != nil {
			return fmt.Errorf("reverb: convolution engine: %w", err)
		}
	}

	return nil
}

// Reset clears convolution history.
func (c *Convolver) Reset() {
	for _, engine := range c.engines {
		engine.Reset()
	}
}

// Channels returns the number of output channels.
func (c *Convolver) Channels() int { return len(c.engines) }

// BlockSize returns the frames processed per call.
func (c *Convolver) BlockSize() int { return c.blockSize }

// Impulse returns the impulse response the convolver was built from.
func (c *Convolver) Impulse() ImpulseResponse { return c.ir }
