// Command tuner detects the pitch of a recording the way the live tuner
// does: the file is streamed in real time into a capture buffer and a
// detection runs on every tick.
//
// Usage:
//
//	tuner [flags] input.(wav|mp3)
//
// Examples:
//
//	tuner open-strings.wav
//	tuner -rate 30 -speed 4 -window 4096 bass.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-studio/dsp/pitch"
	"github.com/cwbudde/algo-studio/tuner"
	"github.com/cwbudde/algo-studio/waveform"
)

// chunkFrames is the size of each simulated capture callback.
const chunkFrames = 512

func main() {
	rate := flag.Float64("rate", tuner.DefaultTickRate, "detections per second")
	window := flag.Int("window", tuner.DefaultWindowSize, "analysis window in samples")
	speed := flag.Float64("speed", 1, "stream the file this many times faster than real time")
	method := flag.String("method", "direct", "correlation method: direct or fft")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tuner [flags] input.(wav|mp3)\n\n")
		fmt.Fprintf(os.Stderr, "Prints pitch readings for a recording, streamed as live input.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *speed <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	m := pitch.MethodDirect
	if *method == "fft" {
		m = pitch.MethodFFT
	}

	if err := run(log, flag.Arg(0), *rate, *window, *speed, m); err != nil {
		log.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("tuner failed")
		os.Exit(1)
	}
}

func run(log *logrus.Entry, path string, rate float64, window int, speed float64, method pitch.Method) error {
	a, err := waveform.DecodeFile(path)
	if err != nil {
		return err
	}

	capture, err := tuner.NewRingCapture(float64(a.SampleRate), 2*window)
	if err != nil {
		return err
	}

	session, err := tuner.NewSession(capture,
		tuner.WithTickRate(rate),
		tuner.WithWindowSize(window),
		tuner.WithDetector(pitch.NewDetector(pitch.WithMethod(method))),
		tuner.WithLogger(log),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	if err := session.Start(ctx, func(r tuner.Reading) {
		printReading(r.At.Sub(start).Seconds()*speed, r)
	}); err != nil {
		return err
	}

	stream(ctx, capture, a.Channels[0], float64(a.SampleRate)*speed)

	return session.Stop()
}

// stream feeds samples into capture in chunks, paced to samplesPerSecond.
func stream(ctx context.Context, capture *tuner.RingCapture, samples []float64, samplesPerSecond float64) {
	interval := time.Duration(float64(chunkFrames) / samplesPerSecond * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for off := 0; off < len(samples); off += chunkFrames {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if err := capture.Write(samples[off:min(off+chunkFrames, len(samples))]); err != nil {
			return
		}
	}
}

func printReading(at float64, r tuner.Reading) {
	status := "flat"
	switch {
	case r.InTune:
		status = "in tune"
	case r.Estimate.Cents > 0:
		status = "sharp"
	}

	fmt.Printf("%7.2fs  %-2s%d  %8.2f Hz  %+3d cents  string %d (%s%d)  %s\n",
		at,
		r.Estimate.Note, r.Estimate.Octave,
		r.Estimate.Frequency,
		r.Estimate.Cents,
		r.String.Number, r.String.Note, r.String.Octave,
		status,
	)
}
