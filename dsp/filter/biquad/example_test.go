package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	// Create a lowpass-like biquad section.
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	// Process an impulse.
	for i := range 6 {
		var x float32
		if i == 0 {
			x = 1
		}

		y := s.ProcessSample(x)
		fmt.Printf("y[%d] = %.6f\n", i, y)
	}
	// Output:
	// y[0] = 0.250000
	// y[1] = 0.550000
	// y[2] = 0.350000
	// y[3] = 0.048000
	// y[4] = -0.004400
	// y[5] = -0.002800
}

func ExampleSection_ProcessStrided() {
	// Halve the left channel of an interleaved stereo block.
	s := biquad.NewSection(biquad.Coefficients{B0: 0.5})

	stereo := []float32{1, 1, 2, 2, 3, 3}
	s.ProcessStrided(stereo, 0, 2)
	fmt.Println(stereo)
	// Output:
	// [0.5 1 1 2 1.5 3]
}
