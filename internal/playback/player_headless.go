//go:build headless

package playback

import "sync"

// Player discards audio in headless builds.
type Player struct {
	channels int

	mu      sync.Mutex
	playing bool
}

// Open returns a player without a device.
func Open(_, channels int) (*Player, error) {
	return &Player{channels: channels}, nil
}

// Play attaches r without pulling from it.
func (p *Player) Play(r Renderer) *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = true
	return NewStream(r, p.channels)
}

// Stop detaches the renderer.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
}

// IsPlaying reports whether a renderer is attached.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// Close stops playback.
func (p *Player) Close() error {
	p.Stop()
	return nil
}
