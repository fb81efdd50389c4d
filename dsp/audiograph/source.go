package audiograph

import "sync/atomic"

// Source produces audio for a SourceNode. Read fills dst (planar, one
// buffer per context channel) and returns the number of frames written;
// frames after that are treated as silence. Returning 0 marks the end of
// the source.
type Source interface {
	Read(dst [][]float64) int
}

// SourceNode feeds a Source into the graph. It has no inputs.
type SourceNode struct {
	src   Source
	ended atomic.Bool
}

// NewSource wraps src as a graph node.
func (c *Context) NewSource(src Source) *SourceNode {
	return &SourceNode{src: src}
}

// Ended reports whether the source has returned no frames.
func (s *SourceNode) Ended() bool { return s.ended.Load() }

// Process implements Node.
func (s *SourceNode) Process(_ Quantum, _, out [][]float64) {
	n := 0
	if !s.ended.Load() && s.src != nil {
		n = s.src.Read(out)
		if n <= 0 {
			s.ended.Store(true)
			n = 0
		}
	}

	for ch := range out {
		clear(out[ch][n:])
	}
}

// BufferSource plays planar sample data once. Channels beyond those in the
// data repeat the last one.
type BufferSource struct {
	data [][]float64
	pos  int
}

// NewBufferSource creates a source over data. The data is not copied.
func NewBufferSource(data [][]float64) *BufferSource {
	return &BufferSource{data: data}
}

// Read implements Source.
func (b *BufferSource) Read(dst [][]float64) int {
	if len(b.data) == 0 || len(dst) == 0 {
		return 0
	}

	n := min(len(dst[0]), len(b.data[0])-b.pos)
	if n <= 0 {
		return 0
	}

	for ch := range dst {
		src := b.data[min(ch, len(b.data)-1)]
		copy(dst[ch][:n], src[b.pos:b.pos+n])
	}

	b.pos += n
	return n
}

// Remaining returns the number of frames not yet read.
func (b *BufferSource) Remaining() int {
	if len(b.data) == 0 {
		return 0
	}
	return len(b.data[0]) - b.pos
}
