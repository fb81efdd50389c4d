package effectchain

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-studio/dsp/core"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	if p.EQ.Enabled || p.Compressor.Enabled || p.Reverb.Enabled {
		t.Fatal("all stages should start disabled")
	}
	if p.EQ.LowFreq != 320 || p.EQ.HighFreq != 3200 {
		t.Fatalf("EQ corners = %v/%v", p.EQ.LowFreq, p.EQ.HighFreq)
	}

	c := p.Compressor
	if c.Threshold != -24 || c.Ratio != 4 || c.Attack != 0.003 || c.Release != 0.25 || c.Knee != 30 || c.MakeupGain != 0 {
		t.Fatalf("compressor defaults = %+v", c)
	}

	r := p.Reverb
	if r.WetDry != 0.3 || r.Decay != 2 || r.PreDelay != 20 {
		t.Fatalf("reverb defaults = %+v", r)
	}

	if p.Clamped() != p {
		t.Fatal("defaults must already be in range")
	}
}

func TestEffectiveBypassRules(t *testing.T) {
	p := DefaultParams()
	p.EQ = EQParams{LowGain: 6, MidGain: -3, HighGain: 9, LowFreq: 100, HighFreq: 8000}
	p.Compressor.MakeupGain = 6
	p.Compressor.Ratio = 8
	p.Reverb.WetDry = 0.8

	e := Effective(p)
	if e.LowGain != 0 || e.MidGain != 0 || e.HighGain != 0 {
		t.Fatalf("disabled EQ gains = %v/%v/%v, want 0", e.LowGain, e.MidGain, e.HighGain)
	}
	if e.LowFreq != 100 || e.HighFreq != 8000 {
		t.Fatal("corner frequencies follow stored values")
	}
	if e.Ratio != 1 || e.Makeup != 1 {
		t.Fatalf("disabled compressor ratio=%v makeup=%v, want 1/1", e.Ratio, e.Makeup)
	}
	if e.Dry != 1 || e.Wet != 0 {
		t.Fatalf("disabled reverb dry=%v wet=%v, want 1/0", e.Dry, e.Wet)
	}

	p.EQ.Enabled = true
	p.Compressor.Enabled = true
	p.Reverb.Enabled = true

	e = Effective(p)
	if e.LowGain != 6 || e.MidGain != -3 || e.HighGain != 9 {
		t.Fatalf("enabled EQ gains = %v/%v/%v", e.LowGain, e.MidGain, e.HighGain)
	}
	if e.Ratio != 8 || math.Abs(e.Makeup-core.DBToLinear(6)) > 1e-12 {
		t.Fatalf("enabled compressor ratio=%v makeup=%v", e.Ratio, e.Makeup)
	}
	if math.Abs(e.Dry-0.2) > 1e-12 || e.Wet != 0.8 {
		t.Fatalf("enabled reverb dry=%v wet=%v, want 0.2/0.8", e.Dry, e.Wet)
	}
}

func TestClampedReplacesNonFinite(t *testing.T) {
	p := DefaultParams()
	p.EQ.LowGain = math.NaN()
	p.Compressor.Ratio = math.Inf(1)
	p.Reverb.Decay = 60

	c := p.Clamped()
	if c.EQ.LowGain != 0 || c.Compressor.Ratio != 4 || c.Reverb.Decay != MaxDecay {
		t.Fatalf("Clamped = %+v", c)
	}
}
