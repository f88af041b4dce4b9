package biquad

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float32 // feedforward (numerator)
	A1, A2     float32 // feedback (denominator)
}

// Passthrough returns the identity coefficients (B0=1, all else 0).
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// IsPassthrough reports whether c is exactly the identity.
func (c Coefficients) IsPassthrough() bool {
	return c == Passthrough()
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form I processing.
type Section struct {
	Coefficients

	x1, x2 float32
	y1, y2 float32
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// SetCoefficients replaces the coefficients and keeps the history.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float32) float32 {
	y := s.B0*x + s.B1*s.x1 + s.B2*s.x2 - s.A1*s.y1 - s.A2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// ProcessBlock filters a block of samples in place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float32) {
	s.ProcessStrided(buf, 0, 1)
}

// ProcessStrided filters buf[offset], buf[offset+stride], ... in place.
// Use it to run one channel of an interleaved block. Zero-alloc.
func (s *Section) ProcessStrided(buf []float32, offset, stride int) {
	if stride <= 0 {
		return
	}

	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	x1, x2, y1, y2 := s.x1, s.x2, s.y1, s.y2

	for i := offset; i < len(buf); i += stride {
		x := buf[i]
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		buf[i] = y
	}

	s.x1, s.x2, s.y1, s.y2 = x1, x2, y1, y2
}

// Reset clears the history to zero.
func (s *Section) Reset() {
	s.x1, s.x2, s.y1, s.y2 = 0, 0, 0, 0
}

// State returns the history as [x1, x2, y1, y2].
func (s *Section) State() [4]float32 {
	return [4]float32{s.x1, s.x2, s.y1, s.y2}
}

// SetState restores history previously obtained from State.
func (s *Section) SetState(st [4]float32) {
	s.x1, s.x2, s.y1, s.y2 = st[0], st[1], st[2], st[3]
}
