package pitch

import (
	"math"

	"github.com/cwbudde/algo-studio/dsp/core"
)

const (
	defaultRMSThreshold         = 0.01
	defaultCorrelationThreshold = 0.9

	// minCorrelation is the floor a winning lag must clear to be reported.
	minCorrelation = 0.01

	minWindowLen = 4
)

// Method selects the correlation function used by a Detector.
type Method int

const (
	// MethodDirect is the O(n²) mean-absolute-difference autocorrelation.
	MethodDirect Method = iota
	// MethodFFT is a normalised square difference function computed via FFT.
	MethodFFT
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return "unknown"
	}
}

// Option configures a Detector.
type Option func(*Detector)

// WithRMSThreshold sets the level below which a window is treated as silence.
func WithRMSThreshold(rms float64) Option {
	return func(d *Detector) {
		if rms >= 0 && !math.IsInf(rms, 0) {
			d.rmsThreshold = rms
		}
	}
}

// WithCorrelationThreshold sets the correlation a lag must exceed to be a
// candidate period. Values outside (0, 1) are ignored.
func WithCorrelationThreshold(c float64) Option {
	return func(d *Detector) {
		if c > 0 && c < 1 {
			d.corrThreshold = c
		}
	}
}

// WithMethod selects the correlation method.
func WithMethod(m Method) Option {
	return func(d *Detector) {
		if m == MethodDirect || m == MethodFFT {
			d.method = m
		}
	}
}

// Detector estimates pitch from PCM windows. It owns its working buffers and
// is not safe for concurrent use; give each session its own Detector.
type Detector struct {
	rmsThreshold  float64
	corrThreshold float64
	method        Method

	corr []float64
	fft  *fftCorrelator
}

// NewDetector returns a Detector with the given options applied.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		rmsThreshold:  defaultRMSThreshold,
		corrThreshold: defaultCorrelationThreshold,
		method:        MethodDirect,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// Method returns the configured correlation method.
func (d *Detector) Method() Method { return d.method }

// Detect estimates the fundamental of buf. ok is false when the window is too
// quiet, too short, or has no confident periodicity.
func (d *Detector) Detect(buf []float64, sampleRate float64) (Estimate, bool) {
	freq, ok := d.Frequency(buf, sampleRate)
	if !ok {
		return Estimate{}, false
	}

	return NoteFromFrequency(freq)
}

// Frequency returns the raw fundamental estimate in Hz without note mapping.
func (d *Detector) Frequency(buf []float64, sampleRate float64) (float64, bool) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || len(buf) < minWindowLen {
		return 0, false
	}

	if core.RMS(buf) < d.rmsThreshold {
		return 0, false
	}

	half := len(buf) / 2
	d.corr = core.EnsureLen(d.corr, half+1)

	switch d.method {
	case MethodFFT:
		if d.fft == nil {
			d.fft = &fftCorrelator{}
		}

		if err := d.fft.nsdf(d.corr, buf); err != nil {
			return 0, false
		}
	default:
		meanAbsDiffCorrelation(d.corr, buf)
	}

	lag, best := pickLag(d.corr, d.corrThreshold)
	if lag <= 0 || best <= minCorrelation {
		return 0, false
	}

	return sampleRate / float64(lag), true
}

// meanAbsDiffCorrelation fills corr[lag] = 1 - mean|x[i] - x[i+lag]| over the
// first half of x for lag in [1, len(x)/2].
func meanAbsDiffCorrelation(corr, x []float64) {
	half := len(x) / 2
	inv := 1 / float64(half)
	corr[0] = 1

	for lag := 1; lag <= half; lag++ {
		var sum float64
		for i := range half {
			sum += math.Abs(x[i] - x[i+lag])
		}
		corr[lag] = 1 - sum*inv
	}
}

// pickLag returns the first correlation peak above threshold: lags qualify
// only while the curve is still rising, and the scan stops once it falls
// below the best candidate so that multiples of the period are never reached.
// A later, higher peak sits at a multiple of the period and reads an octave
// or more low.
// corr[0] is ignored.
func pickLag(corr []float64, threshold float64) (int, float64) {
	bestLag := -1
	bestCorr := 0.0
	last := 1.0

	for lag := 1; lag < len(corr); lag++ {
		c := corr[lag]
		if c > threshold && c > last && c > bestCorr {
			bestLag = lag
			bestCorr = c
		} else if bestLag > 0 && c < bestCorr {
			break
		}
		last = c
	}

	return bestLag, bestCorr
}

var defaultDetector = NewDetector()

// Detect runs the package default Detector. It shares working buffers and
// must not be called concurrently; use NewDetector per goroutine instead.
func Detect(buf []float64, sampleRate float64) (Estimate, bool) {
	return defaultDetector.Detect(buf, sampleRate)
}
