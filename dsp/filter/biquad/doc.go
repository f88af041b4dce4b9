// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form I processing for a single second-order
// section defined by [Coefficients]. Direct Form I keeps the input and output
// history separately, so coefficients can be replaced between blocks without
// transients from a mismatched internal state.
//
// [Section.ProcessStrided] filters one channel of an interleaved block in
// place, which is how the stereo render path uses it.
//
// This package provides the processing runtime only. Coefficient design
// lives in dsp/filter/design.
package biquad
