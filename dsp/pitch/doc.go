// Package pitch estimates the fundamental frequency of short mono windows and
// maps it onto the equal-tempered chromatic scale (A4 = 440 Hz).
//
// The default method is a time-domain autocorrelation over the mean absolute
// difference between the window and lag-shifted copies of itself. The first
// strongly periodic lag on a rising edge of the correlation curve is chosen,
// which keeps the estimate on the fundamental rather than on a multiple of the
// period. Its cost is O(n²/4) per window, comfortable for 2048-sample windows
// at display refresh rate.
//
// MethodFFT replaces the difference function with a normalised square
// difference function derived from an FFT autocorrelation. It costs
// O(n log n) but correlation values near the 0.9 threshold differ slightly
// from the direct method, so results can disagree on borderline windows.
//
// Silence and noise are not errors: Detect reports ok=false.
package pitch
