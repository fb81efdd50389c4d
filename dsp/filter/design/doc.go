// Package design computes biquad coefficients for the three-band EQ: RBJ
// cookbook low shelf, peaking and high shelf sections. Invalid frequencies
// (non-positive, at or above Nyquist) yield the identity section rather than
// an error so that live controls never stall.
package design
