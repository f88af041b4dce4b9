package conv

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-binaural/internal/testutil"
)

// streamBlocks runs signal through c block by block, zero-padding the tail,
// and returns the concatenated output.
func streamBlocks(c *BlockConvolver, signal []float32) []float32 {
	bs := c.BlockSize()
	blocks := (len(signal) + bs - 1) / bs

	out := make([]float32, 0, blocks*bs)
	block := make([]float32, bs)
	for b := range blocks {
		clear(block)
		copy(block, signal[b*bs:min((b+1)*bs, len(signal))])
		c.Process(block)
		out = append(out, block...)
	}
	return out
}

func TestBlockConvolverMatchesDirect(t *testing.T) {
	tests := []struct {
		name      string
		blockSize int
		irLen     int
	}{
		{name: "ir shorter than block", blockSize: 64, irLen: 17},
		{name: "ir equals block", blockSize: 32, irLen: 32},
		{name: "ir spans partitions", blockSize: 16, irLen: 100},
		{name: "single sample block", blockSize: 1, irLen: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ir := testutil.DeterministicNoise(7, 0.5, tt.irLen)
			signal := testutil.DeterministicNoise(11, 1, 300)

			c, err := NewBlockConvolver(tt.blockSize, ir)
			if err != nil {
				t.Fatalf("NewBlockConvolver: %v", err)
			}

			// pad so the full tail is streamed out
			padded := make([]float32, len(signal)+tt.irLen-1)
			copy(padded, signal)
			got := streamBlocks(c, padded)

			want, err := Direct(signal, ir)
			if err != nil {
				t.Fatalf("Direct: %v", err)
			}
			testutil.RequireSliceNearlyEqual(t, got[:len(want)], want, 1e-4)
		})
	}
}

func TestBlockConvolverUnitImpulsePassesThrough(t *testing.T) {
	c, err := NewBlockConvolver(4, []float32{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("NewBlockConvolver: %v", err)
	}
	// The one-block delay is capture buffering: a block can only be
	// processed once all of it has arrived, so Latency reports it while
	// Process returns the filtered block in the same call.
	if c.Latency() != 4 {
		t.Fatalf("Latency() = %d, want 4", c.Latency())
	}
	if c.Partitions() != 1 {
		t.Fatalf("Partitions() = %d, want 1", c.Partitions())
	}

	input := []float32{1, 2, 3, 4, 5, 6, 7, 8, -1, -2, -3, -4}
	got := streamBlocks(c, input)
	testutil.RequireSliceNearlyEqual(t, got, input, 1e-5)
}

func TestBlockConvolverDelayedImpulse(t *testing.T) {
	ir := make([]float32, 10)
	ir[6] = 0.5

	c, err := NewBlockConvolver(4, ir)
	if err != nil {
		t.Fatalf("NewBlockConvolver: %v", err)
	}

	input := testutil.Impulse(16, 1)
	got := streamBlocks(c, input)

	want := make([]float32, 16)
	want[7] = 0.5
	testutil.RequireSliceNearlyEqual(t, got, want, 1e-5)
}

func TestBlockConvolverReset(t *testing.T) {
	ir := testutil.DeterministicNoise(3, 1, 24)
	c, err := NewBlockConvolver(8, ir)
	if err != nil {
		t.Fatalf("NewBlockConvolver: %v", err)
	}

	signal := testutil.DeterministicNoise(5, 1, 32)
	first := streamBlocks(c, signal)

	c.Reset()
	second := streamBlocks(c, signal)
	testutil.RequireSliceNearlyEqual(t, second, first, 1e-6)
}

func TestBlockConvolverErrors(t *testing.T) {
	if _, err := NewBlockConvolver(0, []float32{1}); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("block 0: err = %v, want ErrInvalidBlockSize", err)
	}
	if _, err := NewBlockConvolver(4, nil); !errors.Is(err, ErrEmptyImpulseResponse) {
		t.Fatalf("empty ir: err = %v, want ErrEmptyImpulseResponse", err)
	}

	tf := newNaiveDFT(16)
	if _, err := NewBlockConvolver(4, []float32{1}, WithTransformer(tf)); !errors.Is(err, ErrTransformSize) {
		t.Fatalf("size mismatch: err = %v, want ErrTransformSize", err)
	}
}

func TestBlockConvolverPanicsOnWrongBlockLength(t *testing.T) {
	c, err := NewBlockConvolver(4, []float32{1})
	if err != nil {
		t.Fatalf("NewBlockConvolver: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	c.Process(make([]float32, 3))
}

func TestBlockConvolverUnnormalizedBackend(t *testing.T) {
	ir := testutil.DeterministicNoise(9, 1, 12)
	signal := testutil.DeterministicNoise(13, 1, 40)

	c, err := NewBlockConvolver(8, ir, WithTransformer(newNaiveDFT(16)))
	if err != nil {
		t.Fatalf("NewBlockConvolver: %v", err)
	}

	padded := make([]float32, len(signal)+len(ir)-1)
	copy(padded, signal)
	got := streamBlocks(c, padded)

	want, _ := Direct(signal, ir)
	testutil.RequireSliceNearlyEqual(t, got[:len(want)], want, 1e-4)
}

func TestDirect(t *testing.T) {
	got, err := Direct([]float32{1, 2, 3}, []float32{0.5, 0.25})
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float32{0.5, 1.25, 2, 0.75}, 1e-7)

	if _, err := Direct(nil, []float32{1}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if _, err := Direct([]float32{1}, nil); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("err = %v, want ErrEmptyKernel", err)
	}
}

// naiveDFT is an O(n²) transformer whose inverse is not normalized.
type naiveDFT struct {
	n int
}

func newNaiveDFT(n int) *naiveDFT { return &naiveDFT{n: n} }

func (d *naiveDFT) Size() int                 { return d.n }
func (d *naiveDFT) UnnormalizedInverse() bool { return true }

func (d *naiveDFT) Forward(dst []complex64, src []float32) error {
	for k := range d.n/2 + 1 {
		var acc complex128
		for i, x := range src {
			acc += complex(float64(x), 0) * cmplx.Exp(complex(0, -2*math.Pi*float64(k*i)/float64(d.n)))
		}
		dst[k] = complex64(acc)
	}
	return nil
}

func (d *naiveDFT) Inverse(dst []float32, src []complex64) error {
	for i := range d.n {
		var acc float64
		for k := range d.n {
			var bin complex128
			if k <= d.n/2 {
				bin = complex128(src[k])
			} else {
				bin = cmplx.Conj(complex128(src[d.n-k]))
			}
			acc += real(bin * cmplx.Exp(complex(0, 2*math.Pi*float64(k*i)/float64(d.n))))
		}
		dst[i] = float32(acc)
	}
	return nil
}
