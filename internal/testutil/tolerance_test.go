package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	a := []float32{1.0, 2.0, 3.0}
	b := []float32{1.0, 2.5, 3.0}

	d, err := MaxAbsDiff(a, b)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.5) > 1e-12 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	_, err := MaxAbsDiff([]float32{1}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxAbsDiffIdentical(t *testing.T) {
	a := []float32{1, 2, 3}

	d, err := MaxAbsDiff(a, a)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if d != 0 {
		t.Fatalf("MaxAbsDiff = %v, want 0 for identical slices", d)
	}
}

func TestEnergy(t *testing.T) {
	if got := Energy([]float32{1, -2, 0.5}); math.Abs(got-5.25) > 1e-12 {
		t.Fatalf("Energy = %v, want 5.25", got)
	}
}
