package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/conv"
	"github.com/cwbudde/algo-binaural/dsp/core"
)

// Errors returned by NewSurroundVirtualizer.
var (
	ErrTooFewPositions = errors.New("spatial: at least two HRIR positions are required")
	ErrEmptyHRIR       = errors.New("spatial: empty HRIR")
)

// speakerSlots is the number of independently steered speakers.
const speakerSlots = 7

// Mix gains.
const (
	frontGain  = 1.0
	centerGain = math.Sqrt2 / 2
	sideGain   = math.Sqrt2 / 2
	backGain   = math.Sqrt2 / 2
	lfeGain    = 0.25

	stereoFrontGain = 0.8
	stereoSideGain  = 0.4
	monoGain        = 1.0
)

var gains8 = [speakerSlots]float32{frontGain, frontGain, centerGain, sideGain, sideGain, backGain, backGain}

// DefaultSpeakerAzimuths are the nominal 7.1 speaker directions in slot
// order FL, FR, C, SL, SR, BL, BR. Positive azimuth is to the listener's
// left.
var DefaultSpeakerAzimuths = [speakerSlots]float32{30, -30, 0, 90, -90, 150, -150}

// virtualSpeaker places one source channel at a fixed azimuth.
type virtualSpeaker struct {
	azimuth float32
	channel int
	gain    float32
	slot    int
}

var (
	stereoSpeakers = []virtualSpeaker{
		{azimuth: 30, channel: 0, gain: stereoFrontGain, slot: 0},
		{azimuth: -30, channel: 1, gain: stereoFrontGain, slot: 1},
		{azimuth: 110, channel: 0, gain: stereoSideGain, slot: 3},
		{azimuth: -110, channel: 1, gain: stereoSideGain, slot: 4},
	}
	monoSpeakers = []virtualSpeaker{
		{azimuth: 30, channel: 0, gain: monoGain, slot: 0},
		{azimuth: -30, channel: 0, gain: monoGain, slot: 1},
	}
)

// Orientation is the listener's head orientation in radians. Positive yaw
// turns the head to the left, positive pitch tilts it up.
type Orientation struct {
	Yaw   float32
	Pitch float32
}

// SourcePosition is one measured HRIR pair.
type SourcePosition struct {
	AzimuthDegrees float32
	Left, Right    []float32
}

// Config describes the HRIR set of a SurroundVirtualizer.
type Config struct {
	// BlockSize is the render block size in frames. Zero selects the
	// engine default.
	BlockSize int
	// Positions are the measured HRIR pairs. With seven or more, slot i
	// takes its nominal azimuth from Positions[i] (FL, FR, C, SL, SR, BL,
	// BR order); otherwise DefaultSpeakerAzimuths are used.
	Positions []SourcePosition
	// LFE is rendered unsteered.
	LFE SourcePosition
}

// Option configures a SurroundVirtualizer.
type Option func(*options)

type options struct {
	sampleRate float64
	tf         conv.Transformer
}

// WithSampleRate sets the rate the pitch shelf is designed for.
func WithSampleRate(sampleRate float64) Option {
	return func(o *options) {
		if sampleRate > 0 {
			o.sampleRate = sampleRate
		}
	}
}

// WithTransformer shares t among all convolvers instead of a fresh
// algo-fft plan. t must have size 2*BlockSize.
func WithTransformer(t conv.Transformer) Option {
	return func(o *options) {
		o.tf = t
	}
}

// SurroundVirtualizer renders 7.1, stereo or mono blocks to binaural stereo.
// Each speaker slot owns one BinauralConvolver per HRIR position so that
// convolution history is never shared between speakers. Not safe for
// concurrent use.
type SurroundVirtualizer struct {
	blockSize int
	azimuths  []float32
	slotAz    [speakerSlots]float32
	grid      [speakerSlots][]*BinauralConvolver
	lfe       *BinauralConvolver
	pitch     *PitchFilter
}

// NewSurroundVirtualizer builds the convolver grid for cfg.
func NewSurroundVirtualizer(cfg Config, opts ...Option) (*SurroundVirtualizer, error) {
	if len(cfg.Positions) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPositions, len(cfg.Positions))
	}

	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = core.DefaultBlockSize
	}

	o := options{sampleRate: core.DefaultSampleRate}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.tf == nil {
		tf, err := conv.NewAlgoFFT(2 * blockSize)
		if err != nil {
			return nil, err
		}
		o.tf = tf
	}
	withTF := conv.WithTransformer(o.tf)

	v := &SurroundVirtualizer{
		blockSize: blockSize,
		azimuths:  make([]float32, len(cfg.Positions)),
		pitch:     NewPitchFilter(o.sampleRate),
	}

	for i, p := range cfg.Positions {
		if len(p.Left) == 0 || len(p.Right) == 0 {
			return nil, fmt.Errorf("%w: position %d (%.0f°)", ErrEmptyHRIR, i, p.AzimuthDegrees)
		}
		v.azimuths[i] = p.AzimuthDegrees
	}

	v.slotAz = DefaultSpeakerAzimuths
	if len(cfg.Positions) >= speakerSlots {
		for i := range v.slotAz {
			v.slotAz[i] = cfg.Positions[i].AzimuthDegrees
		}
	}

	for slot := range v.grid {
		v.grid[slot] = make([]*BinauralConvolver, len(cfg.Positions))
		for i, p := range cfg.Positions {
			bc, err := NewBinauralConvolver(blockSize, p.Left, p.Right, withTF)
			if err != nil {
				return nil, fmt.Errorf("spatial: slot %d position %d: %w", slot, i, err)
			}
			v.grid[slot][i] = bc
		}
	}

	if len(cfg.LFE.Left) == 0 || len(cfg.LFE.Right) == 0 {
		return nil, fmt.Errorf("%w: LFE", ErrEmptyHRIR)
	}
	lfe, err := NewBinauralConvolver(blockSize, cfg.LFE.Left, cfg.LFE.Right, withTF)
	if err != nil {
		return nil, fmt.Errorf("spatial: LFE: %w", err)
	}
	v.lfe = lfe

	return v, nil
}

// BlockSize returns the render block size in frames.
func (v *SurroundVirtualizer) BlockSize() int { return v.blockSize }

// Render dispatches to Process8, ProcessStereo or ProcessMono. out is
// interleaved stereo of 2*BlockSize samples and is overwritten.
func (v *SurroundVirtualizer) Render(in buffer.View, out []float32, layout Layout, o Orientation) {
	switch layout {
	case Layout8:
		v.Process8(in, out, o)
	case LayoutStereo:
		v.ProcessStereo(in, out, o)
	default:
		v.ProcessMono(in, out, o)
	}
}

// Process8 renders a 7.1 block. The LFE channel is mixed unsteered; the
// other seven are steered by head yaw.
func (v *SurroundVirtualizer) Process8(in buffer.View, out []float32, o Orientation) {
	v.checkBlock(in, out, Layout8)

	v.lfe.Process(in, lfeChannel)
	l, r := v.lfe.Left(), v.lfe.Right()
	for i := range v.blockSize {
		out[2*i] = lfeGain * l[i]
		out[2*i+1] = lfeGain * r[i]
	}

	yawDeg := core.Degrees(o.Yaw)
	for slot, ch := range spatialChannels8 {
		v.renderSpeaker(in, out, slot, ch, v.slotAz[slot]-yawDeg, gains8[slot])
	}

	v.applyPitch(out, o.Pitch)
}

// ProcessStereo renders a stereo block through four virtual speakers at
// ±30° and ±110°.
func (v *SurroundVirtualizer) ProcessStereo(in buffer.View, out []float32, o Orientation) {
	v.renderSpeakers(in, out, LayoutStereo, stereoSpeakers, o)
}

// ProcessMono renders channel 0 through two virtual speakers at ±30°.
func (v *SurroundVirtualizer) ProcessMono(in buffer.View, out []float32, o Orientation) {
	v.renderSpeakers(in, out, LayoutMono, monoSpeakers, o)
}

// Reset clears all convolution and filter history.
func (v *SurroundVirtualizer) Reset() {
	for slot := range v.grid {
		for _, bc := range v.grid[slot] {
			bc.Reset()
		}
	}
	v.lfe.Reset()
	v.pitch.Reset()
}

func (v *SurroundVirtualizer) renderSpeakers(in buffer.View, out []float32, layout Layout, speakers []virtualSpeaker, o Orientation) {
	v.checkBlock(in, out, layout)
	clear(out)

	yawDeg := core.Degrees(o.Yaw)
	for _, s := range speakers {
		v.renderSpeaker(in, out, s.slot, s.channel, s.azimuth-yawDeg, s.gain)
	}

	v.applyPitch(out, o.Pitch)
}

// renderSpeaker convolves channel ch with the two HRIR positions nearest to
// azimuth and accumulates the crossfaded result into out.
func (v *SurroundVirtualizer) renderSpeaker(in buffer.View, out []float32, slot, ch int, azimuth, gain float32) {
	idx0, idx1, frac := FindNearestHRIRs(v.azimuths, azimuth)

	c0, c1 := v.grid[slot][idx0], v.grid[slot][idx1]
	c0.Process(in, ch)
	c1.Process(in, ch)

	l0, r0 := c0.Left(), c0.Right()
	l1, r1 := c1.Left(), c1.Right()
	w0, w1 := gain*(1-frac), gain*frac
	for i := range v.blockSize {
		out[2*i] += w0*l0[i] + w1*l1[i]
		out[2*i+1] += w0*r0[i] + w1*r1[i]
	}
}

func (v *SurroundVirtualizer) applyPitch(out []float32, pitch float32) {
	v.pitch.Update(pitch)
	v.pitch.ProcessInterleaved(out)
}

func (v *SurroundVirtualizer) checkBlock(in buffer.View, out []float32, layout Layout) {
	if len(out) != 2*v.blockSize {
		panic(fmt.Sprintf("spatial: output length %d, want %d", len(out), 2*v.blockSize))
	}
	if in.Frames() != v.blockSize || in.Channels() < layout.Channels() {
		panic(fmt.Sprintf("spatial: input %dch x %d frames does not fit %s at block %d",
			in.Channels(), in.Frames(), layout, v.blockSize))
	}
}
