package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-binaural/dsp/conv"
	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Errors returned by the analysis functions.
var (
	ErrEmptyInput     = errors.New("spectrum: empty input")
	ErrLengthMismatch = errors.New("spectrum: length mismatch")
	ErrInvalidArg     = errors.New("spectrum: invalid argument")
)

// Response is the magnitude response of an impulse response.
type Response struct {
	FreqHz    []float64 // bin centre frequencies, DC excluded
	Magnitude []float64 // linear |H(f)| per bin
}

// Summary holds time-domain level figures of an impulse response.
type Summary struct {
	Length    int
	Peak      float64 // max |h[n]|
	PeakIndex int
	Energy    float64 // Σ h[n]²
}

// Analyze zero-pads ir to the next power of two (at least 256) and returns
// its magnitude response at sampleRate.
func Analyze(ir []float32, sampleRate float64) (Response, error) {
	if len(ir) == 0 {
		return Response{}, ErrEmptyInput
	}
	if sampleRate <= 0 {
		return Response{}, fmt.Errorf("%w: sample rate %v", ErrInvalidArg, sampleRate)
	}

	n := 256
	for n < len(ir) {
		n <<= 1
	}

	tf, err := conv.NewAlgoFFT(n)
	if err != nil {
		return Response{}, err
	}

	padded := make([]float32, n)
	copy(padded, ir)
	bins := make([]complex64, n/2+1)
	if err := tf.Forward(bins, padded); err != nil {
		return Response{}, fmt.Errorf("spectrum: forward transform: %w", err)
	}

	// skip DC so frequencies are strictly positive
	bins = bins[1:]
	re := make([]float64, len(bins))
	im := make([]float64, len(bins))
	freq := make([]float64, len(bins))
	for i, b := range bins {
		re[i] = float64(real(b))
		im[i] = float64(imag(b))
		freq[i] = float64(i+1) * sampleRate / float64(n)
	}

	mag := make([]float64, len(bins))
	vecmath.Magnitude(mag, re, im)

	return Response{FreqHz: freq, Magnitude: mag}, nil
}

// MagnitudeDB returns the response in dB (20*log10).
func (r Response) MagnitudeDB() []float64 {
	out := make([]float64, len(r.Magnitude))
	for i, m := range r.Magnitude {
		out[i] = core.LinearToDB(m)
	}
	return out
}

// Band is the mean level of one fractional-octave band.
type Band struct {
	CenterHz float64
	LevelDB  float64
}

// OctaveBands averages r over 1/fraction-octave bands centred on 1 kHz
// multiples, keeping the bands that contain at least one bin and lie below
// the highest analysed frequency.
func OctaveBands(r Response, fraction int) ([]Band, error) {
	if len(r.FreqHz) == 0 {
		return nil, ErrEmptyInput
	}
	if len(r.FreqHz) != len(r.Magnitude) {
		return nil, fmt.Errorf("%w: %d freqs, %d magnitudes", ErrLengthMismatch, len(r.FreqHz), len(r.Magnitude))
	}
	if fraction <= 0 {
		return nil, fmt.Errorf("%w: fraction %d", ErrInvalidArg, fraction)
	}

	step := math.Pow(2, 1/float64(fraction))
	halfBand := math.Pow(2, 1/(2*float64(fraction)))
	lowest, highest := r.FreqHz[0], r.FreqHz[len(r.FreqHz)-1]

	// walk down from 1 kHz to the first centre at or above the lowest bin
	center := 1000.0
	for center/step >= lowest {
		center /= step
	}

	var bands []Band
	for ; center*halfBand <= highest; center *= step {
		lo := sort.SearchFloat64s(r.FreqHz, center/halfBand)
		hi := sort.SearchFloat64s(r.FreqHz, center*halfBand)
		if lo >= hi {
			continue
		}

		sum := 0.0
		for _, m := range r.Magnitude[lo:hi] {
			sum += m
		}
		bands = append(bands, Band{
			CenterHz: center,
			LevelDB:  core.LinearToDB(sum / float64(hi-lo)),
		})
	}

	return bands, nil
}

// Summarize computes time-domain level figures of ir.
func Summarize(ir []float32) (Summary, error) {
	if len(ir) == 0 {
		return Summary{}, ErrEmptyInput
	}

	x := make([]float64, len(ir))
	for i, v := range ir {
		x[i] = float64(v)
	}

	s := Summary{
		Length: len(ir),
		Peak:   vecmath.MaxAbs(x),
		Energy: vecmath.DotProduct(x, x),
	}
	for i, v := range x {
		if math.Abs(v) == s.Peak {
			s.PeakIndex = i
			break
		}
	}
	return s, nil
}
