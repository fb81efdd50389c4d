package effectchain

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cwbudde/algo-studio/dsp/audiograph"
	"github.com/cwbudde/algo-studio/dsp/core"
	"github.com/cwbudde/algo-studio/dsp/effects/reverb"
	"github.com/sirupsen/logrus"
)

// ErrNotInitialized is returned by Render before a source is connected.
var ErrNotInitialized = errors.New("effectchain: graph not initialized")

// chainNodes is the fixed topology:
//
//	source -> input -> low shelf -> mid peak -> high shelf -> compressor -> makeup
//	makeup -> dry -> output
//	makeup -> convolver -> wet -> output
type chainNodes struct {
	source    *audiograph.SourceNode
	input     *audiograph.GainNode
	low       *audiograph.BiquadNode
	mid       *audiograph.BiquadNode
	high      *audiograph.BiquadNode
	comp      *audiograph.CompressorNode
	makeup    *audiograph.GainNode
	dry       *audiograph.GainNode
	convolver *audiograph.ConvolverNode
	wet       *audiograph.GainNode
	output    *audiograph.GainNode
}

func (n *chainNodes) all() []audiograph.Node {
	return []audiograph.Node{
		n.source, n.input, n.low, n.mid, n.high, n.comp,
		n.makeup, n.dry, n.convolver, n.wet, n.output,
	}
}

// Graph applies EQ, compression and convolution reverb to one source.
//
// The processing context is created lazily by the first ConnectSource. If
// that fails the graph stays uninitialized: parameter updates are still
// stored but have no audible effect, and Render reports ErrNotInitialized.
//
// All methods are safe for concurrent use. Render may run on an audio
// goroutine while updates arrive from another.
type Graph struct {
	mu  sync.Mutex
	cfg config
	log *logrus.Entry

	params Params
	rng    *rand.Rand

	ctx        *audiograph.Context
	nodes      *chainNodes
	irDecay    float64
	irPreDelay float64
}

// New creates an uninitialized graph.
func New(opts ...Option) *Graph {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	rng := cfg.rng
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Graph{
		cfg:    cfg,
		log:    cfg.log,
		params: cfg.params,
		rng:    rng,
	}
}

// ConnectSource routes src through the chain, building the processing
// context on first use. Connecting again replaces the previous source.
//
// A context that cannot be created is logged and returned as an error
// wrapping audiograph.ErrHardwareUnavailable.
func (g *Graph) ConnectSource(src audiograph.Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes != nil {
		return g.replaceSourceLocked(src)
	}

	ctx, err := g.cfg.newContext(g.cfg.processor...)
	if err != nil {
		if !errors.Is(err, audiograph.ErrHardwareUnavailable) {
			err = fmt.Errorf("%w: %w", audiograph.ErrHardwareUnavailable, err)
		}
		g.log.WithFields(logrus.Fields{
			"function": "ConnectSource",
			"error":    err.Error(),
		}).Error("Failed to create processing context, effects disabled")

		return fmt.Errorf("effectchain: %w", err)
	}

	nodes, err := g.build(ctx, src)
	if err != nil {
		_ = ctx.Close()
		g.log.WithFields(logrus.Fields{
			"function": "ConnectSource",
			"error":    err.Error(),
		}).Error("Failed to build effects graph")

		return err
	}

	g.ctx = ctx
	g.nodes = nodes

	g.log.WithFields(logrus.Fields{
		"function":    "ConnectSource",
		"sample_rate": ctx.SampleRate(),
		"block_size":  ctx.BlockSize(),
		"channels":    ctx.Channels(),
	}).Info("Effects graph initialized")

	return nil
}

func (g *Graph) build(ctx *audiograph.Context, src audiograph.Source) (*chainNodes, error) {
	n := &chainNodes{
		source:    ctx.NewSource(src),
		input:     ctx.NewGain(1),
		low:       ctx.NewBiquad(audiograph.LowShelf),
		mid:       ctx.NewBiquad(audiograph.Peaking),
		high:      ctx.NewBiquad(audiograph.HighShelf),
		comp:      ctx.NewCompressor(),
		makeup:    ctx.NewGain(1),
		dry:       ctx.NewGain(1),
		convolver: ctx.NewConvolver(),
		wet:       ctx.NewGain(0),
		output:    ctx.NewGain(1),
	}

	edges := [][2]audiograph.Node{
		{n.source, n.input},
		{n.input, n.low},
		{n.low, n.mid},
		{n.mid, n.high},
		{n.high, n.comp},
		{n.comp, n.makeup},
		{n.makeup, n.dry},
		{n.makeup, n.convolver},
		{n.convolver, n.wet},
		{n.dry, n.output},
		{n.wet, n.output},
		{n.output, ctx.Destination()},
	}
	for _, e := range edges {
		if err := ctx.Connect(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("effectchain: wiring graph: %w", err)
		}
	}

	n.mid.Frequency().SetValue(MidFrequency)
	n.mid.Q().SetValue(MidQ)

	g.applyEQ(n, 0, 0)
	g.applyCompressor(n, 0, 0)
	g.applyMix(n, 0, 0)

	if err := g.loadImpulse(n, ctx.SampleRate()); err != nil {
		return nil, err
	}

	return n, nil
}

func (g *Graph) replaceSourceLocked(src audiograph.Source) error {
	old := g.nodes.source
	g.ctx.Disconnect(old)

	node := g.ctx.NewSource(src)
	if err := g.ctx.Connect(node, g.nodes.input); err != nil {
		return fmt.Errorf("effectchain: connecting source: %w", err)
	}
	g.nodes.source = node

	g.log.WithFields(logrus.Fields{
		"function": "ConnectSource",
	}).Debug("Replaced effects graph source")

	return nil
}

// Output returns the final gain node, or nil before initialization.
func (g *Graph) Output() audiograph.Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes == nil {
		return nil
	}
	return g.nodes.output
}

// Context returns the processing context, or nil before initialization.
func (g *Graph) Context() *audiograph.Context {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.ctx
}

// Initialized reports whether the processing context exists.
func (g *Graph) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.nodes != nil
}

// Render pulls the processed stream into dst. Before initialization dst is
// silenced and ErrNotInitialized returned.
func (g *Graph) Render(dst [][]float64) error {
	g.mu.Lock()
	ctx := g.ctx
	g.mu.Unlock()

	if ctx == nil {
		core.ZeroBus(dst)
		return ErrNotInitialized
	}

	return ctx.Render(dst)
}

// Params returns a copy of the stored parameters.
func (g *Graph) Params() Params {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.params
}

// Effective returns the node values implied by the stored parameters.
func (g *Graph) Effective() EffectiveParams {
	return Effective(g.Params())
}

// Automation returns the targets currently scheduled on the nodes. The
// boolean is false before initialization.
func (g *Graph) Automation() (EffectiveParams, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.nodes
	if n == nil {
		return EffectiveParams{}, false
	}

	return EffectiveParams{
		LowGain:   n.low.Gain().Target(),
		MidGain:   n.mid.Gain().Target(),
		HighGain:  n.high.Gain().Target(),
		LowFreq:   n.low.Frequency().Target(),
		HighFreq:  n.high.Frequency().Target(),
		Threshold: n.comp.Threshold().Target(),
		Ratio:     n.comp.Ratio().Target(),
		Attack:    n.comp.Attack().Target(),
		Release:   n.comp.Release().Target(),
		Knee:      n.comp.Knee().Target(),
		Makeup:    n.makeup.Gain().Target(),
		Dry:       n.dry.Gain().Target(),
		Wet:       n.wet.Gain().Target(),
	}, true
}

// UpdateEQ merges a partial EQ change and schedules it on the nodes.
func (g *Graph) UpdateEQ(u EQUpdate) {
	g.UpdateAll(Update{EQ: &u})
}

// UpdateCompressor merges a partial compressor change and schedules it.
func (g *Graph) UpdateCompressor(u CompressorUpdate) {
	g.UpdateAll(Update{Compressor: &u})
}

// UpdateReverb merges a partial reverb change. Changing decay or pre-delay
// synthesizes a new impulse response and swaps it in.
func (g *Graph) UpdateReverb(u ReverbUpdate) {
	g.UpdateAll(Update{Reverb: &u})
}

// UpdateAll merges changes for any stage and schedules them on the nodes.
func (g *Graph) UpdateAll(u Update) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.params = u.Apply(g.params)

	n := g.nodes
	if n == nil {
		return
	}

	now := g.ctx.CurrentTime()
	tc := g.cfg.timeConstant

	if u.EQ != nil {
		g.applyEQ(n, now, tc)
	}
	if u.Compressor != nil {
		g.applyCompressor(n, now, tc)
	}
	if u.Reverb != nil {
		g.applyMix(n, now, tc)
		if u.Reverb.changesImpulse() {
			if err := g.loadImpulse(n, g.ctx.SampleRate()); err != nil {
				g.log.WithFields(logrus.Fields{
					"function": "UpdateReverb",
					"error":    err.Error(),
				}).Warn("Failed to regenerate impulse response")
			}
		}
	}
}

// Disconnect tears the graph down and releases the processing context.
// It is idempotent; a later ConnectSource builds a fresh graph.
func (g *Graph) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.nodes == nil {
		return
	}

	for _, node := range g.nodes.all() {
		g.ctx.Disconnect(node)
	}
	_ = g.ctx.Close()

	g.nodes = nil
	g.ctx = nil

	g.log.WithFields(logrus.Fields{
		"function": "Disconnect",
	}).Info("Effects graph disconnected")
}

// setParam jumps when tc is zero and otherwise approaches v from now on.
func setParam(p *audiograph.Param, v, now, tc float64) {
	if tc <= 0 {
		p.SetValue(v)
		return
	}
	p.SetTargetAtTime(v, now, tc)
}

func (g *Graph) applyEQ(n *chainNodes, now, tc float64) {
	e := Effective(g.params)

	setParam(n.low.Frequency(), e.LowFreq, now, tc)
	setParam(n.low.Gain(), e.LowGain, now, tc)
	setParam(n.mid.Gain(), e.MidGain, now, tc)
	setParam(n.high.Frequency(), e.HighFreq, now, tc)
	setParam(n.high.Gain(), e.HighGain, now, tc)
}

func (g *Graph) applyCompressor(n *chainNodes, now, tc float64) {
	e := Effective(g.params)

	setParam(n.comp.Threshold(), e.Threshold, now, tc)
	setParam(n.comp.Ratio(), e.Ratio, now, tc)
	setParam(n.comp.Attack(), e.Attack, now, tc)
	setParam(n.comp.Release(), e.Release, now, tc)
	setParam(n.comp.Knee(), e.Knee, now, tc)
	setParam(n.makeup.Gain(), e.Makeup, now, tc)
}

func (g *Graph) applyMix(n *chainNodes, now, tc float64) {
	e := Effective(g.params)

	setParam(n.dry.Gain(), e.Dry, now, tc)
	setParam(n.wet.Gain(), e.Wet, now, tc)
}

// loadImpulse synthesizes an impulse for the stored decay and pre-delay
// unless the current one already matches.
func (g *Graph) loadImpulse(n *chainNodes, sampleRate float64) error {
	r := g.params.Reverb
	if _, ok := n.convolver.Impulse(); ok && r.Decay == g.irDecay && r.PreDelay == g.irPreDelay {
		return nil
	}

	ir, err := reverb.SynthesizeImpulse(sampleRate, r.Decay, r.PreDelay, g.rng)
	if err != nil {
		return fmt.Errorf("effectchain: synthesizing impulse: %w", err)
	}

	if err := n.convolver.SetImpulse(ir); err != nil {
		return fmt.Errorf("effectchain: loading impulse: %w", err)
	}

	g.irDecay = r.Decay
	g.irPreDelay = r.PreDelay

	g.log.WithFields(logrus.Fields{
		"function":    "loadImpulse",
		"decay":       r.Decay,
		"pre_delay":   r.PreDelay,
		"ir_frames":   ir.Len(),
		"sample_rate": sampleRate,
	}).Debug("Loaded reverb impulse response")

	return nil
}
