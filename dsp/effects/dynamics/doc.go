// Package dynamics provides the gain computer used by the effects chain
// compressor stage.
//
// Compressor is a feed-forward soft-knee compressor. Its gain is computed in
// the log2 domain with a quadratic knee around the threshold, and its peak
// detector can be shared across channels for stereo-linked operation.
//
// Building with the fastmath tag replaces the log2/exp2 calls in the gain
// computer with approximations from algo-approx.
package dynamics
