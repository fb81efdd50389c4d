// Package waveform computes and caches the peak envelopes drawn for audio
// tracks.
//
// Cache has two tiers. The memory tier is a fixed-capacity LRU consulted
// first on every lookup. The optional persistent tier (a Store) survives
// restarts and expires entries after a TTL. Persistent-tier failures are
// logged and treated as misses; they never reach the caller.
//
// Decode and DecodeFile read WAV and MP3 sources, ExtractPeaks reduces
// samples to normalized bars, and Loader combines the three.
package waveform
