package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a float32 sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float32 {
	return DC(1.0, n)
}

// Interleave packs equally long channel slices into one interleaved block.
func Interleave(channels ...[]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for ch, data := range channels {
		for i := 0; i < frames && i < len(data); i++ {
			out[i*len(channels)+ch] = data[i]
		}
	}
	return out
}

// Deinterleave extracts channel ch from an interleaved block.
func Deinterleave(data []float32, channels, ch int) []float32 {
	out := make([]float32, len(data)/channels)
	for i := range out {
		out[i] = data[i*channels+ch]
	}
	return out
}
