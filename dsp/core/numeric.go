package core

import (
	"cmp"
	"math"
)

// Clamp limits value to the inclusive range [lo, hi].
func Clamp[T cmp.Ordered](value, lo, hi T) T {
	if lo > hi {
		lo, hi = hi, lo
	}
	return min(max(value, lo), hi)
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * (180 / math.Pi)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * (math.Pi / 180)
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float32) float32 {
	d := float32(math.Mod(float64(deg), 360))
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		// -tiny + 360 rounds up to 360 in float32
		d = 0
	}
	return d
}

// AngularDistance returns the shortest distance in degrees between two
// angles already wrapped into [0, 360). The result is in [0, 180].
func AngularDistance(a, b float32) float32 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return min(d, 360-d)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}
