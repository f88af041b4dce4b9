package eq

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/conv"
)

// Equalizer filters interleaved stereo with one impulse response per
// channel. Not safe for concurrent use.
type Equalizer struct {
	blockSize   int
	left, right *conv.BlockConvolver
	scratch     []float32
}

// NewEqualizer builds an equalizer for blocks of blockSize frames.
func NewEqualizer(blockSize int, ir []float32, opts ...conv.Option) (*Equalizer, error) {
	l, err := conv.NewBlockConvolver(blockSize, ir, opts...)
	if err != nil {
		return nil, fmt.Errorf("eq: %w", err)
	}
	r, err := conv.NewBlockConvolver(blockSize, ir, opts...)
	if err != nil {
		return nil, fmt.Errorf("eq: %w", err)
	}

	return &Equalizer{
		blockSize: blockSize,
		left:      l,
		right:     r,
		scratch:   make([]float32, blockSize),
	}, nil
}

// BlockSize returns the block size in frames.
func (e *Equalizer) BlockSize() int { return e.blockSize }

// Process filters stereo in place. It panics unless len(stereo) is
// 2*BlockSize().
func (e *Equalizer) Process(stereo []float32) {
	if len(stereo) != 2*e.blockSize {
		panic(fmt.Sprintf("eq: stereo length %d, want %d", len(stereo), 2*e.blockSize))
	}

	v := buffer.NewView(stereo, 2)

	v.CopyChannelTo(0, e.scratch)
	e.left.Process(e.scratch)
	v.CopyChannelFrom(0, e.scratch)

	v.CopyChannelTo(1, e.scratch)
	e.right.Process(e.scratch)
	v.CopyChannelFrom(1, e.scratch)
}

// Reset clears the convolution history.
func (e *Equalizer) Reset() {
	e.left.Reset()
	e.right.Reset()
}
