//go:build !headless

package playback

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-studio/dsp/audiograph"
)

// Player owns the output device. Only one Player may exist per process.
type Player struct {
	ctx      *oto.Context
	channels int

	mu      sync.Mutex
	player  *oto.Player
	stream  *Stream
	playing bool
}

// Open initializes the output device. Failures wrap
// audiograph.ErrHardwareUnavailable.
func Open(sampleRate, channels int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("playback: %w: %w", audiograph.ErrHardwareUnavailable, err)
	}
	<-ready

	return &Player{ctx: ctx, channels: channels}, nil
}

// Play starts pulling audio from r, replacing any current renderer.
func (p *Player) Play(r Renderer) *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	p.stream = NewStream(r, p.channels)
	p.player = p.ctx.NewPlayer(p.stream)
	p.player.Play()
	p.playing = true

	return p.stream
}

// Stop halts playback. It is safe to call when nothing plays.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// IsPlaying reports whether a renderer is attached.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// Close stops playback and suspends the device.
func (p *Player) Close() error {
	p.Stop()
	return p.ctx.Suspend()
}

func (p *Player) stopLocked() {
	if p.player != nil {
		_ = p.player.Close()
		p.player = nil
	}
	p.stream = nil
	p.playing = false
}
