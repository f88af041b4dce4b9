// Package eq applies listener-specific headphone correction.
//
// An [Equalizer] convolves both channels of an interleaved stereo block with
// the same correction impulse response. A [Bank] keys equalizers by profile
// and runs only the selected one per block; unknown profiles pass audio
// through untouched.
package eq
