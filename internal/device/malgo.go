package device

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/sirupsen/logrus"
)

// MalgoProvider opens devices through miniaudio.
type MalgoProvider struct {
	ctx *malgo.AllocatedContext
	log logrus.FieldLogger

	mu    sync.Mutex
	cache map[Direction][]malgo.DeviceInfo
}

// NewMalgoProvider initializes a miniaudio context with the platform's
// default backends. Backend log lines are forwarded to log at debug level.
func NewMalgoProvider(log logrus.FieldLogger) (*MalgoProvider, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		if log != nil {
			log.Debug(msg)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("device: init context: %w", err)
	}
	return &MalgoProvider{
		ctx:   ctx,
		log:   log,
		cache: make(map[Direction][]malgo.DeviceInfo),
	}, nil
}

// Close releases the miniaudio context. All streams must be closed first.
func (p *MalgoProvider) Close() error {
	err := p.ctx.Uninit()
	p.ctx.Free()
	if err != nil {
		return fmt.Errorf("device: uninit context: %w", err)
	}
	return nil
}

func deviceType(dir Direction) malgo.DeviceType {
	if dir == Capture {
		return malgo.Capture
	}
	return malgo.Playback
}

// Devices implements Provider. Capabilities come from the device's native
// formats; a device reporting none accepts any configuration.
func (p *MalgoProvider) Devices(dir Direction) ([]Info, error) {
	raw, err := p.ctx.Devices(deviceType(dir))
	if err != nil {
		return nil, fmt.Errorf("device: enumerate %s: %w", dir, err)
	}

	p.mu.Lock()
	p.cache[dir] = raw
	p.mu.Unlock()

	infos := make([]Info, 0, len(raw))
	for _, d := range raw {
		full, err := p.ctx.DeviceInfo(deviceType(dir), d.ID, malgo.Shared)
		if err != nil {
			full = d
		}
		infos = append(infos, Info{Name: d.Name(), Capabilities: capabilities(full)})
	}
	return infos, nil
}

func capabilities(d malgo.DeviceInfo) []Capability {
	n := min(int(d.FormatCount), len(d.Formats))
	caps := make([]Capability, 0, n)
	for _, f := range d.Formats[:n] {
		if f.Channels == 0 {
			continue
		}
		// a zero rate means the device resamples from any rate
		caps = append(caps, Capability{
			Channels:      int(f.Channels),
			MinSampleRate: int(f.SampleRate),
			MaxSampleRate: int(f.SampleRate),
		})
	}
	if len(caps) == 0 {
		for _, ch := range []int{1, 2, 8} {
			caps = append(caps, Capability{Channels: ch})
		}
	}
	return caps
}

func (p *MalgoProvider) lookup(dir Direction, name string) (malgo.DeviceInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.cache[dir] {
		if d.Name() == name {
			return d, true
		}
	}
	return malgo.DeviceInfo{}, false
}

// OpenInput implements Provider.
func (p *MalgoProvider) OpenInput(name string, cfg Config, fill func([]float32), onErr func(error)) (Stream, error) {
	return p.open(Capture, name, cfg, fill, onErr)
}

// OpenOutput implements Provider.
func (p *MalgoProvider) OpenOutput(name string, cfg Config, drain func([]float32), onErr func(error)) (Stream, error) {
	return p.open(Playback, name, cfg, drain, onErr)
}

func (p *MalgoProvider) open(dir Direction, name string, cfg Config, cb func([]float32), onErr func(error)) (Stream, error) {
	info, ok := p.lookup(dir, name)
	if !ok {
		if _, err := p.Devices(dir); err != nil {
			return nil, err
		}
		if info, ok = p.lookup(dir, name); !ok {
			return nil, fmt.Errorf("%w: %s %q", ErrDeviceNotFound, dir, name)
		}
	}

	s := &malgoStream{
		dir:    dir,
		frames: uint32(cfg.BlockSize),
		onErr:  onErr,
		// built here so the callbacks never allocate
		mismatch: fmt.Errorf("%w: %s %q expects %d frames", ErrBlockSizeMismatch, dir, name, cfg.BlockSize),
		lost:     fmt.Errorf("%w: %s %q stopped", ErrStreamRuntime, dir, name),
	}

	dc := malgo.DefaultDeviceConfig(deviceType(dir))
	dc.SampleRate = uint32(cfg.SampleRate)
	dc.PeriodSizeInFrames = uint32(cfg.BlockSize)
	dc.PerformanceProfile = malgo.LowLatency
	id := info.ID.Pointer()
	if dir == Capture {
		dc.Capture.Format = malgo.FormatF32
		dc.Capture.Channels = uint32(cfg.Channels)
		dc.Capture.DeviceID = id
	} else {
		dc.Playback.Format = malgo.FormatF32
		dc.Playback.Channels = uint32(cfg.Channels)
		dc.Playback.DeviceID = id
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, in []byte, frames uint32) {
			s.checkFrames(frames)
			if dir == Capture {
				cb(float32s(in))
			} else {
				cb(float32s(out))
			}
		},
		Stop: s.stopped,
	}

	dev, err := malgo.InitDevice(p.ctx.Context, dc, callbacks)
	if err != nil {
		return nil, fmt.Errorf("device: open %s %q: %w", dir, name, err)
	}
	s.dev = dev
	return s, nil
}

// float32s views a callback byte buffer as samples without copying.
func float32s(b []byte) []float32 {
	if len(b) < 4 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/4)
}

type malgoStream struct {
	dev    *malgo.Device
	dir    Direction
	frames uint32
	onErr  func(error)

	mismatch error
	lost     error
	reported atomic.Bool
	closing  atomic.Bool
}

// checkFrames reports a playback period that differs from the negotiated
// block. Capture periods may vary; the pipeline accepts any whole-frame length.
func (s *malgoStream) checkFrames(frames uint32) {
	if s.dir != Playback {
		return
	}
	if frames != s.frames && s.reported.CompareAndSwap(false, true) && s.onErr != nil {
		s.onErr(s.mismatch)
	}
}

// stopped fires when miniaudio stops the device, including on disconnect.
func (s *malgoStream) stopped() {
	if s.closing.Load() || s.onErr == nil {
		return
	}
	s.onErr(s.lost)
}

func (s *malgoStream) Start() error {
	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("%w: start: %w", ErrStreamRuntime, err)
	}
	return nil
}

func (s *malgoStream) Close() error {
	if !s.closing.CompareAndSwap(false, true) {
		return nil
	}
	err := s.dev.Stop()
	s.dev.Uninit()
	if err != nil {
		return fmt.Errorf("device: stop: %w", err)
	}
	return nil
}
