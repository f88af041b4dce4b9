package spatial

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/conv"
)

// BinauralConvolver convolves a single source channel with a pair of
// head-related impulse responses.
type BinauralConvolver struct {
	left, right       *conv.BlockConvolver
	leftOut, rightOut []float32
}

// NewBinauralConvolver builds the left and right ear convolvers.
func NewBinauralConvolver(blockSize int, left, right []float32, opts ...conv.Option) (*BinauralConvolver, error) {
	l, err := conv.NewBlockConvolver(blockSize, left, opts...)
	if err != nil {
		return nil, fmt.Errorf("spatial: left ear: %w", err)
	}
	r, err := conv.NewBlockConvolver(blockSize, right, opts...)
	if err != nil {
		return nil, fmt.Errorf("spatial: right ear: %w", err)
	}

	return &BinauralConvolver{
		left:     l,
		right:    r,
		leftOut:  make([]float32, blockSize),
		rightOut: make([]float32, blockSize),
	}, nil
}

// Process renders channel ch of v into Left and Right. v must hold exactly
// one block of frames.
func (b *BinauralConvolver) Process(v buffer.View, ch int) {
	if v.Frames() != len(b.leftOut) {
		panic(fmt.Sprintf("spatial: view has %d frames, want %d", v.Frames(), len(b.leftOut)))
	}

	v.CopyChannelTo(ch, b.leftOut)
	copy(b.rightOut, b.leftOut)

	b.left.Process(b.leftOut)
	b.right.Process(b.rightOut)
}

// Left returns the most recent left-ear block.
func (b *BinauralConvolver) Left() []float32 { return b.leftOut }

// Right returns the most recent right-ear block.
func (b *BinauralConvolver) Right() []float32 { return b.rightOut }

// Reset clears both convolvers and the output blocks.
func (b *BinauralConvolver) Reset() {
	b.left.Reset()
	b.right.Reset()
	clear(b.leftOut)
	clear(b.rightOut)
}
