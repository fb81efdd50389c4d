// Command fxrender runs an audio file through the EQ, compressor and
// convolution reverb chain.
//
// Usage:
//
//	fxrender [flags] input.(wav|mp3)
//
// The effect settings come from a JSON preset with the same shape as the
// live parameter updates; fields left out keep their defaults:
//
//	{"eq": {"enabled": true, "lowGain": 3},
//	 "compressor": {"enabled": true, "threshold": -30, "ratio": 6},
//	 "reverb": {"enabled": true, "wetDry": 0.35, "decay": 2.5}}
//
// Examples:
//
//	fxrender -preset warm.json -o out.wav vocals.wav
//	fxrender -preset hall.json -play guitar.mp3
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-studio/dsp/audiograph"
	"github.com/cwbudde/algo-studio/dsp/core"
	"github.com/cwbudde/algo-studio/dsp/effectchain"
	"github.com/cwbudde/algo-studio/internal/playback"
	"github.com/cwbudde/algo-studio/waveform"
)

const outputChannels = 2

func main() {
	preset := flag.String("preset", "", "JSON preset file")
	out := flag.String("o", "", "output WAV file")
	play := flag.Bool("play", false, "play the result on the default output device")
	block := flag.Int("block", 128, "processing block size (power of two)")
	tail := flag.Float64("tail", -1, "seconds rendered after the input ends (default: reverb decay + pre-delay)")
	seed := flag.Uint64("seed", 1, "seed for impulse response synthesis")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxrender [flags] input.(wav|mp3)\n\n")
		fmt.Fprintf(os.Stderr, "Applies EQ, compression and convolution reverb to an audio file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fxrender -preset warm.json -o out.wav vocals.wav\n")
		fmt.Fprintf(os.Stderr, "  fxrender -preset hall.json -play guitar.mp3\n")
	}
	flag.Parse()

	if flag.NArg() != 1 || (*out == "" && !*play) {
		flag.Usage()
		os.Exit(2)
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	if err := run(log, flag.Arg(0), *preset, *out, *play, *block, *tail, *seed); err != nil {
		log.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("fxrender failed")
		os.Exit(1)
	}
}

func run(log *logrus.Entry, in, presetPath, outPath string, play bool, block int, tail float64, seed uint64) error {
	src, err := waveform.DecodeFile(in)
	if err != nil {
		return err
	}

	update, err := loadPreset(presetPath)
	if err != nil {
		return err
	}

	g := effectchain.New(
		effectchain.WithLogger(log),
		effectchain.WithSeed(seed),
		effectchain.WithProcessorOptions(
			core.WithSampleRate(float64(src.SampleRate)),
			core.WithBlockSize(block),
			core.WithChannels(outputChannels),
		),
	)
	defer g.Disconnect()

	g.UpdateAll(update)

	if tail < 0 {
		r := g.Params().Reverb
		tail = 0
		if r.Enabled {
			tail = r.Decay + r.PreDelay/1000
		}
	}
	frames := src.Frames() + int(tail*float64(src.SampleRate))

	if err := g.ConnectSource(audiograph.NewBufferSource(src.Channels)); err != nil {
		return err
	}

	if outPath != "" {
		if err := render(g, outPath, frames, src.SampleRate); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"function": "run",
			"output":   outPath,
			"frames":   frames,
		}).Info("Rendered file")

		if play {
			if err := rewind(g, src.Channels); err != nil {
				return err
			}
		}
	}

	if play {
		return playThrough(log, g, src.SampleRate, frames)
	}
	return nil
}

// rewind rebuilds g around a new source at the start of channels. Filter,
// compressor and reverb state from earlier renders is discarded.
func rewind(g *effectchain.Graph, channels [][]float64) error {
	g.Disconnect()
	return g.ConnectSource(audiograph.NewBufferSource(channels))
}

func loadPreset(path string) (effectchain.Update, error) {
	if path == "" {
		return effectchain.Update{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return effectchain.Update{}, fmt.Errorf("reading preset: %w", err)
	}
	return effectchain.ParseUpdate(data)
}

func render(g *effectchain.Graph, path string, frames, sampleRate int) error {
	bus := core.NewBus(outputChannels, frames)
	if err := g.Render(bus); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := waveform.WriteWAV(f, waveform.Audio{Channels: bus, SampleRate: sampleRate}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func playThrough(log *logrus.Entry, g *effectchain.Graph, sampleRate, frames int) error {
	player, err := playback.Open(sampleRate, outputChannels)
	if err != nil {
		if errors.Is(err, audiograph.ErrHardwareUnavailable) {
			log.WithFields(logrus.Fields{
				"function": "playThrough",
				"error":    err.Error(),
			}).Error("No audio output available")
		}
		return err
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player.Play(g)
	defer player.Stop()

	duration := time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))
	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	return nil
}
