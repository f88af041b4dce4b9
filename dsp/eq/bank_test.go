package eq

import (
	"testing"

	"github.com/cwbudde/algo-binaural/internal/testutil"
)

func TestBankProcessesOnlySelectedProfile(t *testing.T) {
	const block = 8
	b := NewBank[string](block)
	if err := b.Add("half", []float32{0.5}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add("double", []float32{2}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if b.Len() != 2 || !b.Has("half") {
		t.Fatalf("bank has %d profiles", b.Len())
	}

	in := testutil.Ones(2 * block)

	stereo := append([]float32(nil), in...)
	b.Process("half", stereo)
	testutil.RequireSliceNearlyEqual(t, stereo, testutil.DC(0.5, 2*block), 1e-5)

	stereo = append([]float32(nil), in...)
	b.Process("none", stereo)
	testutil.RequireSliceNearlyEqual(t, stereo, in, 0)
}

func TestBankAddRejectsEmptyIR(t *testing.T) {
	b := NewBank[int](8)
	if err := b.Add(1, nil); err == nil {
		t.Fatal("expected error")
	}
	if b.Has(1) {
		t.Fatal("failed profile was registered")
	}
}
