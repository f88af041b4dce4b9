package spatial

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/internal/testutil"
)

func TestPitchFilterLevelIsPassthrough(t *testing.T) {
	p := NewPitchFilter(48000)
	p.Update(0)

	c := p.Coefficients()
	if c.B0 != 1 || c.B1 != 0 || c.B2 != 0 || c.A1 != 0 || c.A2 != 0 {
		t.Fatalf("coefficients = %+v, want pass-through", c)
	}

	in := testutil.DeterministicNoise(1, 1, 64)
	buf := append([]float32(nil), in...)
	p.ProcessInterleaved(buf)
	testutil.RequireSliceNearlyEqual(t, buf, in, 0)
}

func TestPitchFilterShelfGain(t *testing.T) {
	tests := []struct {
		name     string
		pitchDeg float32
		wantDB   float64
	}{
		{name: "look up", pitchDeg: 20, wantDB: 2},
		{name: "look down", pitchDeg: -10, wantDB: -1},
		{name: "clamped up", pitchDeg: 80, wantDB: 3},
		{name: "clamped down", pitchDeg: -45, wantDB: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPitchFilter(48000)
			p.Update(core.Radians(tt.pitchDeg))

			c := p.Coefficients()
			if db := c.MagnitudeDB(100, 48000); math.Abs(db) > 0.05 {
				t.Fatalf("low band = %.3f dB, want ~0", db)
			}
			if db := c.MagnitudeDB(22000, 48000); math.Abs(db-tt.wantDB) > 0.15 {
				t.Fatalf("high band = %.3f dB, want ~%.1f", db, tt.wantDB)
			}
		})
	}
}

func TestPitchFilterKeepsChannelsIndependent(t *testing.T) {
	p := NewPitchFilter(48000)
	p.Update(core.Radians(25))

	left := testutil.DeterministicNoise(2, 1, 32)
	stereo := testutil.Interleave(left, make([]float32, 32))
	p.ProcessInterleaved(stereo)

	for i, v := range testutil.Deinterleave(stereo, 2, 1) {
		if v != 0 {
			t.Fatalf("right[%d] = %v, want 0", i, v)
		}
	}
}
