package pitch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-studio/internal/testutil"
)

const (
	testSampleRate = 44100.0
	testWindow     = 2048
)

func methods() []Method { return []Method{MethodDirect, MethodFFT} }

func TestDetectRejectsQuietWindows(t *testing.T) {
	tests := []struct {
		name string
		buf  []float64
	}{
		{"silence", make([]float64, testWindow)},
		{"quiet sine", testutil.DeterministicSine(440, testSampleRate, 0.005, testWindow)},
		{"quiet noise", testutil.DeterministicNoise(1, 0.01, testWindow)},
	}

	for _, m := range methods() {
		d := NewDetector(WithMethod(m))
		for _, tt := range tests {
			t.Run(m.String()+"/"+tt.name, func(t *testing.T) {
				if est, ok := d.Detect(tt.buf, testSampleRate); ok {
					t.Fatalf("expected no signal, got %+v", est)
				}
			})
		}
	}
}

func TestDetectRejectsInvalidInput(t *testing.T) {
	d := NewDetector()
	sine := testutil.DeterministicSine(440, testSampleRate, 0.5, testWindow)

	for _, sr := range []float64{0, -44100, math.NaN(), math.Inf(1)} {
		if _, ok := d.Detect(sine, sr); ok {
			t.Fatalf("expected ok=false for sample rate %v", sr)
		}
	}

	if _, ok := d.Detect([]float64{0.5, -0.5}, testSampleRate); ok {
		t.Fatal("expected ok=false for a too-short window")
	}
}

func TestDetectSineWithinTwoPercent(t *testing.T) {
	freqs := []float64{82.41, 110, 196, 329.63, 440, 880, 1000}

	for _, m := range methods() {
		d := NewDetector(WithMethod(m))
		for _, f := range freqs {
			buf := testutil.DeterministicSine(f, testSampleRate, 0.5, testWindow)

			got, ok := d.Frequency(buf, testSampleRate)
			if !ok {
				t.Fatalf("%s: no pitch detected for %v Hz", m, f)
			}
			testutil.RequireWithinPercent(t, got, f, 2)
		}
	}
}

func TestDetectGuitarA2(t *testing.T) {
	buf := testutil.DeterministicSine(110, testSampleRate, 0.5, testWindow)

	for _, m := range methods() {
		est, ok := NewDetector(WithMethod(m)).Detect(buf, testSampleRate)
		if !ok {
			t.Fatalf("%s: no pitch detected", m)
		}
		if est.Note != "A" || est.Octave != 2 {
			t.Fatalf("%s: got %s%d, want A2", m, est.Note, est.Octave)
		}
		if est.Cents <= -10 || est.Cents >= 10 {
			t.Fatalf("%s: cents = %d, want |cents| < 10", m, est.Cents)
		}
	}
}

func TestDetectPrefersFundamentalOverHarmonics(t *testing.T) {
	fundamental := testutil.DeterministicSine(196, testSampleRate, 0.4, testWindow)
	second := testutil.DeterministicSine(392, testSampleRate, 0.2, testWindow)
	for i := range fundamental {
		fundamental[i] += second[i]
	}

	got, ok := NewDetector().Frequency(fundamental, testSampleRate)
	if !ok {
		t.Fatal("no pitch detected")
	}
	testutil.RequireWithinPercent(t, got, 196, 2)
}

func TestPackageDetect(t *testing.T) {
	buf := testutil.DeterministicSine(440, testSampleRate, 0.5, testWindow)
	est, ok := Detect(buf, testSampleRate)
	if !ok || est.Note != "A" || est.Octave != 4 {
		t.Fatalf("Detect() = %+v, %v", est, ok)
	}
}

func TestPickLagRisingEdge(t *testing.T) {
	corr := []float64{1, 0.95, 0.5, 0.92, 0.97, 0.93, 0.96, 0.99, 0.2}

	lag, c := pickLag(corr, 0.9)
	if lag != 4 || c != 0.97 {
		t.Fatalf("pickLag() = %d, %v; want first peak 4, 0.97", lag, c)
	}

	if lag, _ := pickLag([]float64{1, 0.99, 0.98, 0.97}, 0.9); lag != -1 {
		t.Fatalf("falling curve should yield no lag, got %d", lag)
	}
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	d := NewDetector(
		WithRMSThreshold(-1),
		WithCorrelationThreshold(1.5),
		WithMethod(Method(42)),
		nil,
	)

	if d.rmsThreshold != defaultRMSThreshold || d.corrThreshold != defaultCorrelationThreshold {
		t.Fatalf("invalid options changed thresholds: %+v", d)
	}
	if d.Method() != MethodDirect {
		t.Fatalf("Method() = %v, want direct", d.Method())
	}
}

func BenchmarkDetectDirect(b *testing.B) {
	benchmarkDetect(b, MethodDirect)
}

func BenchmarkDetectFFT(b *testing.B) {
	benchmarkDetect(b, MethodFFT)
}

func benchmarkDetect(b *testing.B, m Method) {
	buf := testutil.DeterministicSine(220, testSampleRate, 0.5, testWindow)
	d := NewDetector(WithMethod(m))
	b.ReportAllocs()
	for b.Loop() {
		d.Detect(buf, testSampleRate)
	}
}
