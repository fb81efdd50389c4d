// Package buffer provides sample storage shared between the capture,
// analysis and playback paths: a reusable Buffer with a Pool for hot-path
// scratch space, and a concurrency-safe Ring holding the most recent
// samples of a live stream.
package buffer
