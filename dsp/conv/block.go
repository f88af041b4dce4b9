package conv

import "fmt"

// BlockConvolver convolves a stream of fixed-size blocks with an impulse
// response using uniformly partitioned overlap-save.
//
// The impulse response is split into ceil(len(ir)/blockSize) partitions.
// Each is zero-padded to a window of 2*blockSize samples and transformed
// once. A history ring holds the spectra of the most recent input windows,
// one per partition, so that one block of output is
//
//	IFFT( Σ_k partition[k] · history[newest-k] )[blockSize:2*blockSize]
//
// Process runs in place and does not allocate. A BlockConvolver is not safe
// for concurrent use.
type BlockConvolver struct {
	blockSize int
	window    int
	bins      int

	tf         Transformer
	partitions [][]complex64 // immutable after construction
	history    [][]complex64
	head       int // slot of the newest spectrum

	input []float32 // previous block | current block
	acc   []complex64
	out   []float32
}

// Option configures a BlockConvolver.
type Option func(*options)

type options struct {
	tf Transformer
}

// WithTransformer replaces the default algo-fft backend. The transformer
// must have size 2*blockSize and can be shared by convolvers of the same
// block size as long as they run on the same goroutine.
func WithTransformer(t Transformer) Option {
	return func(o *options) {
		o.tf = t
	}
}

// NewBlockConvolver prepares a convolver for the given block size and
// impulse response.
func NewBlockConvolver(blockSize int, ir []float32, opts ...Option) (*BlockConvolver, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if len(ir) == 0 {
		return nil, ErrEmptyImpulseResponse
	}

	window := 2 * blockSize

	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.tf == nil {
		tf, err := NewAlgoFFT(window)
		if err != nil {
			return nil, err
		}
		o.tf = tf
	}
	if o.tf.Size() != window {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTransformSize, o.tf.Size(), window)
	}

	bins := window/2 + 1
	count := (len(ir) + blockSize - 1) / blockSize
	scale := inverseScale(o.tf)

	c := &BlockConvolver{
		blockSize:  blockSize,
		window:     window,
		bins:       bins,
		tf:         o.tf,
		partitions: make([][]complex64, count),
		history:    make([][]complex64, count),
		head:       0,
		input:      make([]float32, window),
		acc:        make([]complex64, bins),
		out:        make([]float32, window),
	}

	padded := make([]float32, window)
	for k := range count {
		clear(padded)
		start := k * blockSize
		copy(padded[:blockSize], ir[start:min(start+blockSize, len(ir))])

		spec := make([]complex64, bins)
		if err := c.tf.Forward(spec, padded); err != nil {
			return nil, fmt.Errorf("conv: partition %d transform: %w", k, err)
		}
		if scale != 1 {
			s := complex(scale, 0)
			for i := range spec {
				spec[i] *= s
			}
		}
		c.partitions[k] = spec
		c.history[k] = make([]complex64, bins)
	}

	return c, nil
}

// BlockSize returns the number of samples consumed and produced per call.
func (c *BlockConvolver) BlockSize() int { return c.blockSize }

// Partitions returns the number of impulse response partitions.
func (c *BlockConvolver) Partitions() int { return len(c.partitions) }

// Latency returns the buffering latency in samples: output for a block is
// available once the whole block has been captured. The convolution itself
// adds no delay.
func (c *BlockConvolver) Latency() int { return c.blockSize }

// Process convolves block in place. It panics if len(block) != BlockSize().
func (c *BlockConvolver) Process(block []float32) {
	if len(block) != c.blockSize {
		panic(fmt.Sprintf("conv: block length %d, want %d", len(block), c.blockSize))
	}

	copy(c.input[c.blockSize:], block)

	// The oldest slot is overwritten by the newest spectrum.
	n := len(c.history)
	c.head = (c.head + 1) % n
	// sizes are fixed at construction, the transformer cannot fail here
	_ = c.tf.Forward(c.history[c.head], c.input)

	clear(c.acc)
	for k, part := range c.partitions {
		hist := c.history[(c.head-k+n)%n]
		for i, h := range hist {
			c.acc[i] += part[i] * h
		}
	}

	_ = c.tf.Inverse(c.out, c.acc)
	copy(block, c.out[c.blockSize:])

	copy(c.input[:c.blockSize], c.input[c.blockSize:])
}

// Reset clears the input and spectral history. Partitions are kept.
func (c *BlockConvolver) Reset() {
	clear(c.input)
	for _, h := range c.history {
		clear(h)
	}
	c.head = 0
}
