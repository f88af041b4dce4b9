package design

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/filter/biquad"
)

// DefaultQ is the Butterworth quality factor 1/√2.
const DefaultQ = 1 / math.Sqrt2

// LowShelf designs an RBJ low-shelf biquad with gain in dB.
// Invalid arguments yield pass-through coefficients.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !finite(gainDB) {
		return biquad.Passthrough()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs an RBJ high-shelf biquad with gain in dB.
// Invalid arguments yield pass-through coefficients.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !finite(gainDB) {
		return biquad.Passthrough()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || !finite(sampleRate) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || !finite(freq) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || !finite(q) {
		return DefaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || !finite(a0) {
		return biquad.Passthrough()
	}

	return biquad.Coefficients{
		B0: float32(b0 / a0),
		B1: float32(b1 / a0),
		B2: float32(b2 / a0),
		A1: float32(a1 / a0),
		A2: float32(a2 / a0),
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
