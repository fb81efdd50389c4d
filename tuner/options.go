package tuner

import (
	"slices"
	"time"

	"github.com/cwbudde/algo-studio/dsp/pitch"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTickRate matches a 60 Hz display refresh.
	DefaultTickRate = 60.0
	// DefaultWindowSize is the number of samples analyzed per tick.
	DefaultWindowSize = 2048
	// DefaultMinFrequency and DefaultMaxFrequency bound accepted
	// detections, exclusive.
	DefaultMinFrequency = 0.0
	DefaultMaxFrequency = 1000.0
)

// Detector estimates the pitch of one window. *pitch.Detector satisfies it.
type Detector interface {
	Detect(buf []float64, sampleRate float64) (pitch.Estimate, bool)
}

type config struct {
	period   time.Duration
	window   int
	minFreq  float64
	maxFreq  float64
	detector Detector
	tuning   []pitch.GuitarString
	log      *logrus.Entry
}

// Option configures a Session.
type Option func(*config)

// WithTickRate sets how many detections run per second.
func WithTickRate(hz float64) Option {
	return func(cfg *config) {
		if hz > 0 {
			cfg.period = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithWindowSize sets the analysis window length in samples.
func WithWindowSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.window = n
		}
	}
}

// WithFrequencyRange sets the open interval of reported frequencies.
func WithFrequencyRange(minHz, maxHz float64) Option {
	return func(cfg *config) {
		if minHz >= 0 && maxHz > minHz {
			cfg.minFreq, cfg.maxFreq = minHz, maxHz
		}
	}
}

// WithDetector replaces the default autocorrelation detector.
func WithDetector(d Detector) Option {
	return func(cfg *config) {
		if d != nil {
			cfg.detector = d
		}
	}
}

// WithTuning sets the strings readings are matched against.
func WithTuning(strings []pitch.GuitarString) Option {
	return func(cfg *config) {
		if len(strings) > 0 {
			cfg.tuning = slices.Clone(strings)
		}
	}
}

// WithLogger sets the entry used for lifecycle messages.
func WithLogger(entry *logrus.Entry) Option {
	return func(cfg *config) {
		if entry != nil {
			cfg.log = entry
		}
	}
}

func defaultConfig() config {
	return config{
		period:   time.Second / time.Duration(DefaultTickRate),
		window:   DefaultWindowSize,
		minFreq:  DefaultMinFrequency,
		maxFreq:  DefaultMaxFrequency,
		detector: pitch.NewDetector(),
		tuning:   slices.Clone(pitch.StandardTuning),
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
}
