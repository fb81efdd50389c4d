// Package playback sends rendered audio to the default output device.
package playback

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-studio/dsp/buffer"
)

// Renderer fills planar float64 channels with the next frames of audio.
// *effectchain.Graph and *audiograph.Context satisfy it.
type Renderer interface {
	Render(dst [][]float64) error
}

// bytesPerSample is the size of one float32 sample.
const bytesPerSample = 4

// Stream adapts a Renderer to the interleaved float32 little-endian byte
// stream the device player reads. Render errors produce silence.
type Stream struct {
	r        Renderer
	channels int
	pool     *buffer.Pool
	frames   atomic.Int64
}

// NewStream reads channels channels from r.
func NewStream(r Renderer, channels int) *Stream {
	return &Stream{r: r, channels: max(channels, 1), pool: buffer.NewPool()}
}

// Read implements io.Reader. It always fills whole frames and never
// returns an error, so the device keeps running.
func (s *Stream) Read(p []byte) (int, error) {
	frameBytes := s.channels * bytesPerSample
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	bufs, bus := s.pool.GetBus(s.channels, frames)
	defer s.pool.PutBus(bufs)

	if s.r != nil {
		if err := s.r.Render(bus); err != nil {
			for _, ch := range bus {
				clear(ch)
			}
		}
	}

	off := 0
	for i := range frames {
		for ch := range bus {
			binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(bus[ch][i])))
			off += bytesPerSample
		}
	}

	s.frames.Add(int64(frames))
	return off, nil
}

// Frames returns the number of frames delivered so far.
func (s *Stream) Frames() int64 { return s.frames.Load() }
