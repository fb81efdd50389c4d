package reverb

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNormalizationScaleUnitPower(t *testing.T) {
	ones := make([]float64, 1000)
	for i := range ones {
		ones[i] = 1
	}

	ir := ImpulseResponse{Channels: [][]float64{ones, ones}, SampleRate: 44100}
	if got := NormalizationScale(ir); math.Abs(got-gainCalibration) > 1e-15 {
		t.Fatalf("scale = %v, want %v", got, gainCalibration)
	}

	ir.SampleRate = 88200
	if got := NormalizationScale(ir); math.Abs(got-gainCalibration/2) > 1e-15 {
		t.Fatalf("scale at 88.2k = %v, want %v", got, gainCalibration/2)
	}
}

func TestNormalizationScaleSilentImpulse(t *testing.T) {
	ir := ImpulseResponse{Channels: [][]float64{make([]float64, 64)}, SampleRate: 44100}
	if got, want := NormalizationScale(ir), gainCalibration/minPower; math.Abs(got-want) > 1e-9 {
		t.Fatalf("scale = %v, want %v", got, want)
	}

	if got := NormalizationScale(ImpulseResponse{}); got != 1 {
		t.Fatalf("empty impulse scale = %v, want 1", got)
	}
}

func TestScaledCopies(t *testing.T) {
	ir, err := SynthesizeImpulse(8000, 0.5, 0, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatal(err)
	}

	scaled := ir.Scaled(0.5)
	if &scaled.Channels[0][0] == &ir.Channels[0][0] {
		t.Fatal("Scaled must not alias the source")
	}
	for i := range 100 {
		if scaled.Channels[1][i] != ir.Channels[1][i]*0.5 {
			t.Fatalf("sample %d not scaled", i)
		}
	}
	if scaled.SampleRate != ir.SampleRate || scaled.Decay != ir.Decay {
		t.Fatal("metadata not preserved")
	}
}
