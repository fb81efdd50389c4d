package buffer

import "sync"

// Pool recycles Buffers so render callbacks do not allocate per call.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any { return &Buffer{} },
		},
	}
}

// Get returns a zeroed Buffer of the requested length. Return it with Put.
func (p *Pool) Get(length int) *Buffer {
	b := p.pool.Get().(*Buffer)
	b.Resize(length)
	b.Zero()
	return b
}

// Put returns a Buffer to the pool. The caller must not use it afterwards.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}

// GetBus returns channels zeroed buffers of frames samples each, together
// with their planar view.
func (p *Pool) GetBus(channels, frames int) ([]*Buffer, [][]float64) {
	bufs := make([]*Buffer, channels)
	bus := make([][]float64, channels)
	for ch := range bufs {
		bufs[ch] = p.Get(frames)
		bus[ch] = bufs[ch].Samples()
	}
	return bufs, bus
}

// PutBus returns every buffer obtained from GetBus.
func (p *Pool) PutBus(bufs []*Buffer) {
	for _, b := range bufs {
		p.Put(b)
	}
}
