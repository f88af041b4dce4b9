package spatial

import (
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/filter/biquad"
	"github.com/cwbudde/algo-binaural/dsp/filter/design"
)

// Pitch shelf parameters. Head pitch in degrees, clamped to ±maxPitchDeg,
// maps to shelf gain through pitchGainPerDeg.
const (
	pitchShelfFreq  = 5000
	pitchShelfQ     = 1 / 0.707
	maxPitchDeg     = 30
	pitchGainPerDeg = 0.1
)

// PitchFilter applies a head-pitch dependent high shelf to interleaved
// stereo. Looking up brightens, looking down darkens, by at most ±3 dB.
// Filter history carries across blocks.
type PitchFilter struct {
	sampleRate  float64
	coeffs      biquad.Coefficients
	left, right *biquad.Section
}

// NewPitchFilter returns a pass-through pitch filter for the given sample
// rate. Non-positive rates fall back to the engine rate.
func NewPitchFilter(sampleRate float64) *PitchFilter {
	if sampleRate <= 0 {
		sampleRate = core.DefaultSampleRate
	}
	return &PitchFilter{
		sampleRate: sampleRate,
		coeffs:     biquad.Passthrough(),
		left:       biquad.NewSection(biquad.Passthrough()),
		right:      biquad.NewSection(biquad.Passthrough()),
	}
}

// Update recomputes the shelf for the given pitch in radians.
func (p *PitchFilter) Update(pitchRadians float32) {
	gainDB := core.Clamp(core.Degrees(pitchRadians), -maxPitchDeg, maxPitchDeg) * pitchGainPerDeg

	c := biquad.Passthrough()
	if gainDB != 0 {
		c = design.HighShelf(pitchShelfFreq, float64(gainDB), pitchShelfQ, p.sampleRate)
	}

	p.coeffs = c
	p.left.SetCoefficients(c)
	p.right.SetCoefficients(c)
}

// Coefficients returns the coefficients set by the last Update.
func (p *PitchFilter) Coefficients() biquad.Coefficients { return p.coeffs }

// ProcessInterleaved filters a stereo block in place.
func (p *PitchFilter) ProcessInterleaved(stereo []float32) {
	p.left.ProcessStrided(stereo, 0, 2)
	p.right.ProcessStrided(stereo, 1, 2)
}

// Reset clears the filter history.
func (p *PitchFilter) Reset() {
	p.left.Reset()
	p.right.Reset()
}
