// Package spatial renders multichannel sources to head-tracked binaural
// stereo.
//
// A [BinauralConvolver] filters one source channel with a left-ear and a
// right-ear impulse response. A [SurroundVirtualizer] owns a grid of them,
// one per speaker slot and measured HRIR position, and for every block picks
// the two positions nearest to each speaker's head-relative azimuth
// ([FindNearestHRIRs]), crossfading their rendered outputs. A [PitchFilter]
// high shelf tilts the result with head pitch.
//
// Interpolation happens on the rendered outputs, not on the impulse
// responses, and is not phase accurate.
package spatial
