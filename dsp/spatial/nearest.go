package spatial

import (
	"math"

	"github.com/cwbudde/algo-binaural/dsp/core"
)

// spanEpsilon is the span below which two positions count as coincident.
const spanEpsilon = 1e-6

// FindNearestHRIRs returns the two measured positions closest to target
// (degrees) and the crossfade fraction from idx0 towards idx1.
//
// Angles are compared on the circle after wrapping into [0, 360). idx0 is
// the nearest position (the first one on ties), idx1 the nearest of the
// rest. frac is the distance from idx0 to the target divided by the span
// between idx0 and idx1, or 0 when the span is negligible. azimuths must
// hold at least two entries.
func FindNearestHRIRs(azimuths []float32, target float32) (idx0, idx1 int, frac float32) {
	t := core.NormalizeDegrees(target)

	minDist := float32(math.MaxFloat32)
	for i, az := range azimuths {
		if d := core.AngularDistance(t, core.NormalizeDegrees(az)); d < minDist {
			minDist = d
			idx0 = i
		}
	}

	idx1 = idx0
	nextDist := float32(math.MaxFloat32)
	for i, az := range azimuths {
		if i == idx0 {
			continue
		}
		if d := core.AngularDistance(t, core.NormalizeDegrees(az)); d < nextDist {
			nextDist = d
			idx1 = i
		}
	}

	a0 := core.NormalizeDegrees(azimuths[idx0])
	a1 := core.NormalizeDegrees(azimuths[idx1])
	span := core.AngularDistance(a0, a1)
	if span < spanEpsilon {
		return idx0, idx1, 0
	}

	return idx0, idx1, core.AngularDistance(t, a0) / span
}
