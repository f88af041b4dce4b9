package session

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/device"
	"github.com/cwbudde/algo-binaural/internal/headtrack"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

// DefaultPackets is the swapchain headroom in blocks.
const DefaultPackets = 4

// PipelineConfig sizes the two swapchains of a Pipeline.
type PipelineConfig struct {
	Input  device.Config
	Output device.Config
	// Packets is the ring headroom in blocks; zero selects DefaultPackets.
	Packets int
	Policy  buffer.OverflowPolicy
}

// PipelineStats is a snapshot of the pipeline counters.
type PipelineStats struct {
	Input    buffer.SwapchainStats
	Output   buffer.SwapchainStats
	Rendered uint64 // blocks rendered
}

// Pipeline connects a capture stream to a playback stream through the
// render engine. OnInput and OnOutput run on the device threads; they never
// block or allocate.
type Pipeline struct {
	inCh   int
	inLen  int // samples per capture callback
	outLen int // samples per playback callback
	block  int

	in  *buffer.Swapchain // capture blocks -> render blocks
	out *buffer.Swapchain // render blocks -> playback blocks

	engine   Engine
	settings *settings.Live
	head     headtrack.Provider

	onErr    func(error)
	inErr    error
	outErr   error
	mismatch atomic.Bool
	primed   atomic.Bool
	rendered atomic.Uint64
}

// NewPipeline sizes a pipeline for cfg around engine. onErr receives a
// block size mismatch once.
func NewPipeline(cfg PipelineConfig, engine Engine, live *settings.Live, head headtrack.Provider, onErr func(error)) (*Pipeline, error) {
	block := engine.Renderer.BlockSize()
	if cfg.Input.Channels <= 0 || cfg.Input.BlockSize <= 0 || cfg.Output.BlockSize <= 0 {
		return nil, fmt.Errorf("%w: input %+v output %+v", ErrUnsupportedStreamConfig, cfg.Input, cfg.Output)
	}
	if cfg.Output.Channels != 2 {
		return nil, fmt.Errorf("%w: playback needs 2 channels, got %d", ErrUnsupportedStreamConfig, cfg.Output.Channels)
	}

	packets := cfg.Packets
	if packets <= 0 {
		packets = DefaultPackets
	}

	inCh := cfg.Input.Channels
	p := &Pipeline{
		inCh:     inCh,
		inLen:    cfg.Input.BlockSize * inCh,
		outLen:   cfg.Output.BlockSize * 2,
		block:    block,
		in:       buffer.NewSwapchain(cfg.Input.BlockSize*inCh, block*inCh, packets, cfg.Policy, buffer.WithFrameSize(inCh)),
		out:      buffer.NewSwapchain(block*2, cfg.Output.BlockSize*2, packets, cfg.Policy, buffer.WithFrameSize(2)),
		engine:   engine,
		settings: live,
		head:     head,
		onErr:    onErr,
	}
	p.inErr = fmt.Errorf("%w: capture block is not a whole number of %d-channel frames", ErrBufferSizeMismatch, inCh)
	p.outErr = fmt.Errorf("%w: playback block of %d samples expected", ErrBufferSizeMismatch, p.outLen)
	return p, nil
}

// OnInput takes one capture callback block and renders every complete
// block that becomes available. Capture blocks may vary in length as long
// as they hold whole frames.
func (p *Pipeline) OnInput(samples []float32) {
	if len(samples)%p.inCh != 0 {
		p.flagMismatch(p.inErr)
		return
	}
	p.in.SubmitSamples(samples)

	for {
		src, ok := p.in.AcquireReadyOutputBuf()
		if !ok {
			return
		}

		dst, ok := p.out.AcquireFreeInputBuf()
		if !ok {
			p.out.RecordOverrun(2 * p.block)
			src.Release()
			continue
		}

		p.render(src.Samples(), dst.Samples())
		src.Release()
		p.out.SubmitInput(dst)
		p.rendered.Add(1)
		p.primed.Store(true)
	}
}

func (p *Pipeline) render(in, out []float32) {
	mode := p.settings.Mode()
	o := headtrack.OrientationOf(p.head)

	p.engine.Renderer.Render(buffer.NewView(in, p.inCh), out, layoutFor(mode, p.inCh), o)
	p.engine.EQ.Process(p.settings.Profile(), out)
}

// layoutFor maps mode to a layout the capture stream can feed.
func layoutFor(mode settings.SourceMode, inCh int) spatial.Layout {
	l := spatial.LayoutForChannels(mode.Channels())
	if l.Channels() > inCh {
		l = spatial.LayoutForChannels(inCh)
	}
	return l
}

// OnOutput fills one playback callback block. Without a ready block it
// plays silence and, once the first block has been rendered, counts an
// underrun. A block of the wrong length is zeroed and reported as a
// mismatch.
func (p *Pipeline) OnOutput(dst []float32) {
	if len(dst) != p.outLen {
		clear(dst)
		p.flagMismatch(p.outErr)
		return
	}

	l, ok := p.out.AcquireReadyOutputBuf()
	if !ok {
		clear(dst)
		if p.primed.Load() {
			p.out.RecordUnderrun()
		}
		return
	}
	copy(dst, l.Samples())
	l.Release()
}

func (p *Pipeline) flagMismatch(err error) {
	if p.mismatch.CompareAndSwap(false, true) && p.onErr != nil {
		p.onErr(err)
	}
}

// Mismatch reports whether a device delivered a block of the wrong size.
func (p *Pipeline) Mismatch() bool { return p.mismatch.Load() }

// Stats returns the pipeline counters.
func (p *Pipeline) Stats() PipelineStats {
	return PipelineStats{
		Input:    p.in.Stats(),
		Output:   p.out.Stats(),
		Rendered: p.rendered.Load(),
	}
}
