package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Option configures a Quantizer.
type Option func(*Quantizer) error

// WithBitDepth sets the target bit depth (2 to 32, default 16).
func WithBitDepth(bits int) Option {
	return func(q *Quantizer) error {
		if bits < 2 || bits > 32 {
			return fmt.Errorf("dither: bit depth must be in [2, 32]: %d", bits)
		}
		q.bits = bits
		return nil
	}
}

// WithType sets the dither noise (default Triangular).
func WithType(t Type) Option {
	return func(q *Quantizer) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}
		q.typ = t
		return nil
	}
}

// WithShaping sets the noise shaping filter (default ShapingNone).
func WithShaping(s Shaping) Option {
	return func(q *Quantizer) error {
		if !s.Valid() {
			return fmt.Errorf("dither: invalid shaping: %d", int(s))
		}
		q.shaping = s
		return nil
	}
}

// WithRNG sets a deterministic random source.
func WithRNG(rng *rand.Rand) Option {
	return func(q *Quantizer) error {
		q.rng = rng
		return nil
	}
}

// Quantizer converts normalized samples in [-1, 1] to signed integers of
// the configured bit depth. Each channel keeps its own shaping history.
// Not safe for concurrent use.
type Quantizer struct {
	bits    int
	typ     Type
	shaping Shaping
	rng     *rand.Rand

	scale  float64
	lo, hi int
	chans  []*errorShaper
}

// NewQuantizer returns a quantizer for interleaved audio with the given
// channel count.
func NewQuantizer(channels int, opts ...Option) (*Quantizer, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("dither: channel count must be positive: %d", channels)
	}

	q := &Quantizer{bits: 16, typ: Triangular}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(q); err != nil {
			return nil, err
		}
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	full := math.Exp2(float64(q.bits - 1))
	q.scale = full - 1
	q.lo, q.hi = -int(full), int(full)-1

	q.chans = make([]*errorShaper, channels)
	for i := range q.chans {
		q.chans[i] = newErrorShaper(shapingCoeffs[q.shaping])
	}
	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bits }

// Channels returns the interleaved channel count.
func (q *Quantizer) Channels() int { return len(q.chans) }

// Quantize converts one sample of channel ch.
func (q *Quantizer) Quantize(x float32, ch int) int {
	s := q.chans[ch]
	shaped := s.Shape(float64(x) * q.scale)

	r := int(math.Round(shaped + q.noise()))
	r = max(q.lo, min(q.hi, r))

	s.RecordError(float64(r) - shaped)
	return r
}

// QuantizeInterleaved converts src into dst, which must be at least as
// long as src.
func (q *Quantizer) QuantizeInterleaved(dst []int, src []float32) {
	n := len(q.chans)
	for i, x := range src {
		dst[i] = q.Quantize(x, i%n)
	}
}

// Reset clears the shaping history of every channel.
func (q *Quantizer) Reset() {
	for _, s := range q.chans {
		s.Reset()
	}
}

func (q *Quantizer) noise() float64 {
	switch q.typ {
	case Rectangular:
		return q.rng.Float64() - 0.5
	case Triangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
