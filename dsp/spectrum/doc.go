// Package spectrum analyses impulse responses in the frequency domain.
//
// [Analyze] transforms an impulse response with the same real FFT backend
// the convolvers use and reports per-bin magnitudes. [OctaveBands] averages
// those magnitudes over 1/N-octave bands for a compact printout, and
// [Summarize] reports time-domain level figures.
package spectrum
