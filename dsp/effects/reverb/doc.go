// Package reverb provides the convolution reverb used by the effects chain.
//
// SynthesizeImpulse builds a stereo impulse response from exponentially
// decaying noise with a silent pre-delay. Convolver runs one partitioned
// FFT convolver per impulse-response channel and produces the wet signal
// only; dry/wet mixing is left to the caller.
package reverb
