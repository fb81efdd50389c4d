// Command peaks prints the waveform overview of audio files, caching the
// result in memory and optionally in a bbolt database.
//
// Usage:
//
//	peaks [flags] file ...
//
// Examples:
//
//	peaks -db ~/.cache/peaks.db song.mp3 stems/*.wav
//	peaks -db peaks.db -clear-expired
//	peaks -bars 40 -stats a.wav a.wav
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-studio/waveform"
	"github.com/cwbudde/algo-studio/waveform/boltstore"
)

var levels = []rune("▁▂▃▄▅▆▇█")

func main() {
	os.Exit(run())
}

func run() int {
	dbPath := flag.String("db", "", "bbolt database for the persistent tier (memory only when empty)")
	bars := flag.Int("bars", waveform.DefaultBars, "number of peaks per file")
	clearAll := flag.Bool("clear", false, "empty the cache before loading")
	clearExpired := flag.Bool("clear-expired", false, "remove expired entries from the database")
	stats := flag.Bool("stats", false, "print cache statistics")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: peaks [flags] file ...\n\n")
		fmt.Fprintf(os.Stderr, "Prints normalized waveform peaks of WAV and MP3 files.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	log := logrus.NewEntry(logger)

	opts := []waveform.Option{waveform.WithLogger(log)}
	if *dbPath != "" {
		store, err := boltstore.Open(*dbPath)
		if err != nil {
			// The cache works without its persistent tier.
			log.WithFields(logrus.Fields{
				"function": "main",
				"error":    err.Error(),
			}).Warn("Persistent cache unavailable, using memory only")
		} else {
			defer store.Close()
			opts = append(opts, waveform.WithStore(store))
		}
	}

	cache, err := waveform.New(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	if *clearAll {
		cache.Clear(ctx)
	}
	if *clearExpired {
		fmt.Printf("removed %d expired entries\n", cache.ClearExpired(ctx))
	}

	loader := waveform.NewLoader(cache, *bars)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	failed := false
	for _, path := range flag.Args() {
		e, err := loader.LoadFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			failed = true
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2fs\t%s\n", path, e.DurationSeconds, sparkline(e.Peaks))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}

	if *stats {
		s := cache.Stats()
		fmt.Printf("memory hits %d, store hits %d, misses %d, hit rate %.0f%%, %d in memory\n",
			s.MemoryHits, s.StoreHits, s.Misses, 100*s.HitRate(), s.Entries)
	}

	if failed {
		return 1
	}
	return 0
}

func sparkline(peaks []float64) string {
	var b strings.Builder
	for _, p := range peaks {
		i := int(p * float64(len(levels)-1))
		b.WriteRune(levels[max(0, min(i, len(levels)-1))])
	}
	return b.String()
}
