// Package dither quantizes float samples to integer PCM with dither noise
// and error-feedback noise shaping.
package dither

import "fmt"

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None rounds without noise.
	None Type = iota
	// Rectangular adds uniform noise of ±1 LSB.
	Rectangular
	// Triangular adds TPDF noise, the sum of two uniform draws.
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"None", "Rectangular", "Triangular"}

// String returns the name of the dither type.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// Shaping selects the error-feedback filter.
type Shaping int

const (
	ShapingNone Shaping = iota
	ShapingEFB          // simple error feedback, 1st order
	Shaping2MEC         // modified E-weighted, 2nd order
	Shaping9FC          // F-weighted, 9th order

	shapingCount
)

var shapingNames = [shapingCount]string{"None", "EFB", "2MEC", "9FC"}

var shapingCoeffs = [shapingCount][]float64{
	ShapingNone: nil,
	ShapingEFB:  {1},
	Shaping2MEC: {1.537, -0.8367},
	Shaping9FC: {
		2.412, -3.370, 3.937, -4.174, 3.353,
		-2.205, 1.281, -0.569, 0.0847,
	},
}

// String returns the name of the shaping filter.
func (s Shaping) String() string {
	if s.Valid() {
		return shapingNames[s]
	}
	return fmt.Sprintf("Shaping(%d)", int(s))
}

// Valid reports whether s is a known shaping filter.
func (s Shaping) Valid() bool {
	return s >= 0 && s < shapingCount
}

// errorShaper subtracts weighted past quantization errors from its input.
// The cycle per sample is Shape, quantize, RecordError.
type errorShaper struct {
	coeffs  []float64
	history []float64
	pos     int
}

func newErrorShaper(coeffs []float64) *errorShaper {
	return &errorShaper{
		coeffs:  coeffs,
		history: make([]float64, len(coeffs)),
	}
}

func (s *errorShaper) Shape(x float64) float64 {
	n := len(s.coeffs)
	if n == 0 {
		return x
	}
	for i, c := range s.coeffs {
		x -= c * s.history[(n+s.pos-i)%n]
	}
	s.pos = (s.pos + 1) % n
	return x
}

func (s *errorShaper) RecordError(e float64) {
	if len(s.history) > 0 {
		s.history[s.pos] = e
	}
}

func (s *errorShaper) Reset() {
	clear(s.history)
	s.pos = 0
}
