package tuner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/algo-studio/dsp/pitch"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("tuner: session already started")
	// ErrSessionStopped is returned by Start after Stop.
	ErrSessionStopped = errors.New("tuner: session stopped")
)

// Reading is one accepted detection.
type Reading struct {
	Estimate pitch.Estimate
	String   pitch.GuitarString // closest string of the tuning
	InTune   bool               // within ±5 cents
	Close    bool               // within ±15 cents
	At       time.Time
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
	stateStopped
)

// Session drives periodic detection over a Capture. The Session owns the
// capture: Stop stops it.
type Session struct {
	capture Capture
	cfg     config
	log     *logrus.Entry

	mu     sync.Mutex
	state  sessionState
	cancel context.CancelFunc
	done   chan struct{}

	tickMu sync.Mutex
	window []float64
}

// NewSession creates an idle session over capture.
func NewSession(capture Capture, opts ...Option) (*Session, error) {
	if capture == nil {
		return nil, errors.New("tuner: nil capture")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		capture: capture,
		cfg:     cfg,
		log:     cfg.log,
		window:  make([]float64, cfg.window),
	}, nil
}

// Start launches the tick loop. onReading runs on the loop goroutine for
// every accepted detection and must return quickly; it must not call Stop.
// The loop ends when ctx is canceled or Stop is called.
func (s *Session) Start(ctx context.Context, onReading func(Reading)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrSessionStopped
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = stateRunning

	go s.run(loopCtx, onReading, s.done)

	s.log.WithFields(logrus.Fields{
		"function":    "Start",
		"sample_rate": s.capture.SampleRate(),
		"window":      s.cfg.window,
		"period":      s.cfg.period.String(),
	}).Info("Tuner session started")

	return nil
}

// Stop stops the capture first, then ends the loop and waits for it. No
// callback runs after Stop returns. Stop is idempotent; the session cannot
// be restarted.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStopped {
		return nil
	}
	running := s.state == stateRunning
	s.state = stateStopped

	err := s.capture.Stop()

	if running {
		s.cancel()
		<-s.done

		s.log.WithFields(logrus.Fields{
			"function": "Stop",
		}).Info("Tuner session stopped")
	}

	if err != nil {
		return fmt.Errorf("tuner: stopping capture: %w", err)
	}
	return nil
}

// Tick runs one detection on the newest window. The boolean is false when
// the capture has too few samples, no pitch is present or the frequency is
// outside the configured range.
func (s *Session) Tick() (Reading, bool) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	n, err := s.capture.ReadWindow(s.window)
	if err != nil {
		if !errors.Is(err, ErrCaptureStopped) {
			s.log.WithFields(logrus.Fields{
				"function": "Tick",
				"error":    err.Error(),
			}).Debug("Capture read failed")
		}
		return Reading{}, false
	}
	if n < len(s.window) {
		return Reading{}, false
	}

	est, ok := s.cfg.detector.Detect(s.window, s.capture.SampleRate())
	if !ok || est.Frequency <= s.cfg.minFreq || est.Frequency >= s.cfg.maxFreq {
		return Reading{}, false
	}

	return Reading{
		Estimate: est,
		String:   pitch.ClosestString(s.cfg.tuning, est.Frequency),
		InTune:   pitch.InTune(est.Cents),
		Close:    pitch.Close(est.Cents),
		At:       time.Now(),
	}, true
}

func (s *Session) run(ctx context.Context, onReading func(Reading), done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r, ok := s.Tick()
		if !ok || onReading == nil {
			continue
		}

		// A cancel racing with the tick must not reach the callback.
		if ctx.Err() != nil {
			return
		}

		s.log.WithFields(logrus.Fields{
			"function":  "run",
			"frequency": r.Estimate.Frequency,
			"note":      r.Estimate.Note,
			"cents":     r.Estimate.Cents,
		}).Debug("Pitch detected")

		onReading(r)
	}
}
