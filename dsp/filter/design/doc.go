// Package design provides biquad coefficient designers.
//
// The functions in this package compute RBJ cookbook coefficients in float64
// and return them as [biquad.Coefficients] for the float32 runtime in
// dsp/filter/biquad. Out-of-range frequencies, non-finite gains and invalid
// sample rates produce pass-through coefficients rather than an error, so
// designers can be called on every block without a failure path.
package design
