package audiograph

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-studio/dsp/core"
)

// settleEpsilon is the relative distance at which an approach snaps to its
// target and automation ends.
const settleEpsilon = 1e-9

// Param is an automatable node control. All methods are safe to call while
// the owning context renders.
type Param struct {
	mu sync.Mutex

	sampleRate float64
	min, max   float64
	def        float64

	value     float64
	target    float64
	start     int64   // first frame of the approach
	coeff     float64 // per-sample approach factor
	automated bool
}

// NewParam creates a free-standing parameter. Node constructors use it for
// their controls; custom nodes may do the same.
func NewParam(sampleRate, def, min, max float64) *Param {
	def = core.Clamp(def, min, max)
	return &Param{
		sampleRate: sampleRate,
		min:        min,
		max:        max,
		def:        def,
		value:      def,
		target:     def,
	}
}

// Min returns the lower bound.
func (p *Param) Min() float64 { return p.min }

// Max returns the upper bound.
func (p *Param) Max() float64 { return p.max }

// Default returns the initial value.
func (p *Param) Default() float64 { return p.def }

// Value returns the current value.
func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.value
}

// Target returns the value the parameter is heading to, or the current
// value when no automation is pending.
func (p *Param) Target() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.automated {
		return p.target
	}
	return p.value
}

// Automating reports whether an approach is still in progress.
func (p *Param) Automating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.automated
}

// SetValue jumps to v immediately and cancels pending automation.
// v is clamped to the parameter range; NaN and Inf are ignored.
func (p *Param) SetValue(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	v = core.Clamp(v, p.min, p.max)
	p.value = v
	p.target = v
	p.automated = false
}

// SetTargetAtTime starts an exponential approach towards target at
// startTime (context seconds):
//
//	v(t) = target + (v(startTime) - target) * exp(-(t - startTime) / timeConstant)
//
// A non-positive timeConstant jumps to target at startTime. A new call
// replaces any pending approach, continuing from the current value.
func (p *Param) SetTargetAtTime(target, startTime, timeConstant float64) {
	if math.IsNaN(target) || math.IsInf(target, 0) || math.IsNaN(startTime) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.target = core.Clamp(target, p.min, p.max)
	p.start = int64(math.Round(max(startTime, 0) * p.sampleRate))
	p.automated = true

	if timeConstant <= 0 || math.IsNaN(timeConstant) {
		p.coeff = 1
	} else {
		p.coeff = 1 - math.Exp(-1/(timeConstant*p.sampleRate))
	}
}

// fill writes the per-sample values for q into dst and advances the state.
func (p *Param) fill(q Quantum, dst []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.automated {
		for i := range dst {
			dst[i] = p.value
		}
		return
	}

	for i := range dst {
		dst[i] = p.value
		p.step(q.Frame + int64(i))
	}
}

// kValue returns the value at the start of q and advances the state past it.
func (p *Param) kValue(q Quantum) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.value
	if p.automated {
		for i := range q.Frames {
			p.step(q.Frame + int64(i))
		}
	}
	return v
}

func (p *Param) step(frame int64) {
	if !p.automated || frame < p.start {
		return
	}

	p.value += (p.target - p.value) * p.coeff
	if math.Abs(p.target-p.value) <= settleEpsilon*max(1, math.Abs(p.target)) {
		p.value = p.target
		p.automated = false
	}
}
