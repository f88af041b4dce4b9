package conv

import "errors"

// Errors returned by convolution functions.
var (
	ErrEmptyInput           = errors.New("conv: empty input")
	ErrEmptyKernel          = errors.New("conv: empty kernel")
	ErrEmptyImpulseResponse = errors.New("conv: empty impulse response")
	ErrLengthMismatch       = errors.New("conv: buffer length mismatch")
	ErrInvalidBlockSize     = errors.New("conv: invalid block size")
	ErrTransformSize        = errors.New("conv: transform size does not match window")
)

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
//
// This is an O(N*M) algorithm; use it as a reference or for short kernels.
func Direct(a, b []float32) ([]float32, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float32, len(a)+len(b)-1)
	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution, writing to a pre-allocated destination.
// dst must have length len(a) + len(b) - 1. Accumulation runs in float64.
func DirectTo(dst, a, b []float32) {
	for k := range dst {
		lo := max(0, k-len(b)+1)
		hi := min(k, len(a)-1)

		var acc float64
		for i := lo; i <= hi; i++ {
			acc += float64(a[i]) * float64(b[k-i])
		}
		dst[k] = float32(acc)
	}
}
