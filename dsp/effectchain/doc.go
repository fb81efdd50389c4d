// Package effectchain drives a fixed EQ, compressor and reverb chain built on
// audiograph.
//
// Graph owns the stored Params, the single source of truth for the chain.
// Partial updates are clamped into range, merged, and scheduled on the nodes
// with exponential smoothing so that live changes do not click. Disabling a
// stage bypasses it through its node values only; the stored settings are
// kept and come back when the stage is enabled again.
//
// The reverb impulse is synthesized from decay and pre-delay and swapped
// into the convolver whenever either changes.
package effectchain
