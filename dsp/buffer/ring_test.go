package buffer

import (
	"sync"
	"testing"
)

func TestRingRoundsCapacityUp(t *testing.T) {
	if got := NewRing(12).Cap(); got != 16 {
		t.Fatalf("Cap() = %d, want 16", got)
	}
	if got := NewRing(16).Cap(); got != 16 {
		t.Fatalf("Cap() = %d, want 16", got)
	}
}

func TestRingWriteDropsExcess(t *testing.T) {
	r := NewRing(4)

	if n := r.Write([]float32{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Fatalf("Write = %d, want 4", n)
	}
	if r.Free() != 0 {
		t.Fatalf("Free() = %d, want 0", r.Free())
	}

	out := make([]float32, 8)
	if n := r.Read(out); n != 4 {
		t.Fatalf("Read = %d, want 4", n)
	}
	for i := range 4 {
		if out[i] != float32(i+1) {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], i+1)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(8)
	out := make([]float32, 5)

	var next float32
	for round := range 10 {
		in := make([]float32, 5)
		for i := range in {
			in[i] = next
			next++
		}
		if n := r.Write(in); n != 5 {
			t.Fatalf("round %d: Write = %d, want 5", round, n)
		}
		if !r.ReadExact(out) {
			t.Fatalf("round %d: ReadExact failed", round)
		}
		for i := range out {
			if out[i] != in[i] {
				t.Fatalf("round %d: out[%d] = %v, want %v", round, i, out[i], in[i])
			}
		}
	}
}

func TestRingWriteOverwriteKeepsNewest(t *testing.T) {
	r := NewRing(4)
	r.Write([]float32{1, 2, 3})

	if dropped := r.WriteOverwrite([]float32{4, 5, 6}); dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}

	out := make([]float32, 4)
	if !r.ReadExact(out) {
		t.Fatal("ReadExact failed")
	}
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRingWriteOverwriteTruncatesOversizedInput(t *testing.T) {
	r := NewRing(2)

	if dropped := r.WriteOverwrite([]float32{1, 2, 3, 4, 5}); dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
	out := make([]float32, 2)
	r.ReadExact(out)
	if out[0] != 4 || out[1] != 5 {
		t.Fatalf("out = %v, want [4 5]", out)
	}
}

func TestRingReadExactNeedsFullBlock(t *testing.T) {
	r := NewRing(8)
	r.Write([]float32{1, 2, 3})

	if r.ReadExact(make([]float32, 4)) {
		t.Fatal("ReadExact succeeded with 3 of 4 samples")
	}
	if r.Available() != 3 {
		t.Fatalf("Available() = %d, want 3 (nothing consumed)", r.Available())
	}
}

func TestRingConcurrentTransfer(t *testing.T) {
	const total = 1 << 14
	r := NewRing(64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var next float32
		chunk := make([]float32, 7)
		for sent := 0; sent < total; {
			n := min(len(chunk), total-sent)
			for i := range n {
				chunk[i] = next + float32(i)
			}
			w := r.Write(chunk[:n])
			next += float32(w)
			sent += w
		}
	}()

	got := make([]float32, 0, total)
	buf := make([]float32, 5)
	for len(got) < total {
		n := r.Read(buf)
		got = append(got, buf[:n]...)
	}
	wg.Wait()

	for i, v := range got {
		if v != float32(i) {
			t.Fatalf("got[%d] = %v, want %d", i, v, i)
		}
	}
}

func TestFrameRingKeepsWholeFrames(t *testing.T) {
	r := NewFrameRing(12, 6)
	if r.Cap() != 12 {
		t.Fatalf("Cap() = %d, want 12", r.Cap())
	}

	if n := r.Write(make([]float32, 10)); n != 6 {
		t.Fatalf("Write = %d, want 6", n)
	}
	if n := r.Write(make([]float32, 12)); n != 6 {
		t.Fatalf("Write = %d, want 6", n)
	}
	if r.ReadExact(make([]float32, 4)) {
		t.Fatal("ReadExact accepted a partial frame")
	}

	if dropped := r.WriteOverwrite(make([]float32, 7)); dropped != 7 {
		t.Fatalf("WriteOverwrite dropped %d, want 7", dropped)
	}
	if r.Available() != 12 {
		t.Fatalf("Available() = %d, want 12", r.Available())
	}
}

func TestNewFrameRingPanicsOnZeroFrame(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewFrameRing(8, 0)
}
