package effectchain

import (
	"math/rand/v2"

	"github.com/cwbudde/algo-studio/dsp/audiograph"
	"github.com/cwbudde/algo-studio/dsp/core"
	"github.com/sirupsen/logrus"
)

// DefaultTimeConstant is the smoothing time constant for live parameter
// changes, in seconds.
const DefaultTimeConstant = 0.01

// ContextFactory creates the processing context a Graph renders with.
type ContextFactory func(opts ...core.ProcessorOption) (*audiograph.Context, error)

type config struct {
	log          *logrus.Entry
	newContext   ContextFactory
	processor    []core.ProcessorOption
	rng          *rand.Rand
	params       Params
	timeConstant float64
}

// Option configures a Graph.
type Option func(*config)

// WithLogger sets the log entry used for lifecycle and failure messages.
func WithLogger(entry *logrus.Entry) Option {
	return func(cfg *config) {
		if entry != nil {
			cfg.log = entry
		}
	}
}

// WithContextFactory replaces audiograph.NewContext. A factory that fails
// leaves the graph uninitialized.
func WithContextFactory(factory ContextFactory) Option {
	return func(cfg *config) {
		if factory != nil {
			cfg.newContext = factory
		}
	}
}

// WithProcessorOptions sets sample rate, block size and channel count of the
// processing context.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(cfg *config) {
		cfg.processor = append(cfg.processor, opts...)
	}
}

// WithSeed makes impulse response synthesis deterministic.
func WithSeed(seed uint64) Option {
	return func(cfg *config) {
		cfg.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithParams sets the initial parameters. Values are clamped.
func WithParams(p Params) Option {
	return func(cfg *config) {
		cfg.params = p.Clamped()
	}
}

// WithTimeConstant sets the smoothing time constant in seconds. Zero makes
// parameter changes take effect at the next quantum.
func WithTimeConstant(seconds float64) Option {
	return func(cfg *config) {
		if seconds >= 0 {
			cfg.timeConstant = seconds
		}
	}
}

func defaultConfig() config {
	return config{
		log:          logrus.NewEntry(logrus.StandardLogger()),
		newContext:   audiograph.NewContext,
		params:       DefaultParams(),
		timeConstant: DefaultTimeConstant,
	}
}
