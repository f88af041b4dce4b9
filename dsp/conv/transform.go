package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Transformer is a real-input discrete Fourier transform of a fixed size.
// Forward writes Size()/2+1 bins; Inverse reads them back into Size()
// samples, normalized by 1/Size().
type Transformer interface {
	Size() int
	Forward(dst []complex64, src []float32) error
	Inverse(dst []float32, src []complex64) error
}

// UnnormalizedInverse is implemented by transformers whose Inverse does not
// divide by the transform size. BlockConvolver folds the missing 1/Size()
// into its stored partitions.
type UnnormalizedInverse interface {
	UnnormalizedInverse() bool
}

// AlgoFFT is the default Transformer backed by an algo-fft real plan.
type AlgoFFT struct {
	n    int
	plan *algofft.PlanRealT[float32, complex64]
}

// NewAlgoFFT creates a real transform plan of size n.
func NewAlgoFFT(n int) (*AlgoFFT, error) {
	plan, err := algofft.NewPlanReal32(n)
	if err != nil {
		return nil, fmt.Errorf("conv: FFT plan for size %d: %w", n, err)
	}
	return &AlgoFFT{n: n, plan: plan}, nil
}

// Size returns the transform size.
func (a *AlgoFFT) Size() int { return a.n }

// Forward computes the spectrum of src.
func (a *AlgoFFT) Forward(dst []complex64, src []float32) error {
	return a.plan.Forward(dst, src)
}

// Inverse computes the normalized inverse transform of src.
func (a *AlgoFFT) Inverse(dst []float32, src []complex64) error {
	return a.plan.Inverse(dst, src)
}

// inverseScale returns the factor folded into stored partitions so that
// Inverse output comes out at unit gain.
func inverseScale(t Transformer) float32 {
	if u, ok := t.(UnnormalizedInverse); ok && u.UnnormalizedInverse() {
		return 1 / float32(t.Size())
	}
	return 1
}
