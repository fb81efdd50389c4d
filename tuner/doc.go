// Package tuner runs pitch detection on live input at a fixed tick rate.
//
// A Session pulls the newest window from a Capture on every tick, detects
// its pitch and reports the nearest note together with the closest string
// of the configured tuning. Ticks never block on I/O: a capture that has
// too little data yet is simply skipped until the next tick.
package tuner
