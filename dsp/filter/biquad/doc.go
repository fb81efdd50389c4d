// Package biquad provides the second-order IIR section used by the EQ stages.
//
// A [Section] implements Direct Form II Transposed processing for a single
// section defined by [Coefficients]. Coefficients can be swapped between
// blocks without clearing state, which is how smoothed EQ automation is
// applied. Coefficient design lives in dsp/filter/design.
package biquad
