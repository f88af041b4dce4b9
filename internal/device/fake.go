package device

import (
	"fmt"
	"sync"
)

// Fake is an in-memory Provider. Streams are driven by calling Pump.
type Fake struct {
	mu      sync.Mutex
	devices map[Direction][]Info
	streams []*FakeStream
	openErr error
}

// NewFake returns a provider with no devices.
func NewFake() *Fake {
	return &Fake{devices: make(map[Direction][]Info)}
}

// Add registers a device.
func (f *Fake) Add(dir Direction, info Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[dir] = append(f.devices[dir], info)
}

// Remove unregisters a device and fails its open streams with
// ErrStreamRuntime, the way a disconnect would.
func (f *Fake) Remove(dir Direction, name string) {
	f.mu.Lock()
	f.drop(dir, name)

	var lost []*FakeStream
	for _, s := range f.streams {
		if s.Dir == dir && s.Name == name && !s.Closed() {
			lost = append(lost, s)
		}
	}
	f.mu.Unlock()

	for _, s := range lost {
		s.Fail(fmt.Errorf("%w: %s disconnected", ErrStreamRuntime, name))
	}
}

// RemoveSilently unregisters a device without notifying its streams, like
// a backend that never reports disconnects.
func (f *Fake) RemoveSilently(dir Direction, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drop(dir, name)
}

func (f *Fake) drop(dir Direction, name string) {
	var kept []Info
	for _, info := range f.devices[dir] {
		if info.Name != name {
			kept = append(kept, info)
		}
	}
	f.devices[dir] = kept
}

// FailOpen makes subsequent opens return err until cleared with nil.
func (f *Fake) FailOpen(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
}

// Devices implements Provider.
func (f *Fake) Devices(dir Direction) ([]Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Info(nil), f.devices[dir]...), nil
}

// OpenInput implements Provider.
func (f *Fake) OpenInput(name string, cfg Config, fill func([]float32), onErr func(error)) (Stream, error) {
	return f.open(Capture, name, cfg, fill, onErr)
}

// OpenOutput implements Provider.
func (f *Fake) OpenOutput(name string, cfg Config, drain func([]float32), onErr func(error)) (Stream, error) {
	return f.open(Playback, name, cfg, drain, onErr)
}

func (f *Fake) open(dir Direction, name string, cfg Config, cb func([]float32), onErr func(error)) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return nil, f.openErr
	}
	if _, ok := Find(f.devices[dir], name); !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrDeviceNotFound, dir, name)
	}

	s := &FakeStream{
		Dir:    dir,
		Name:   name,
		Config: cfg,
		cb:     cb,
		onErr:  onErr,
		buf:    make([]float32, cfg.BlockSize*cfg.Channels),
	}
	f.streams = append(f.streams, s)
	return s, nil
}

// Streams returns every stream opened so far, oldest first.
func (f *Fake) Streams() []*FakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeStream(nil), f.streams...)
}

// Open returns the open streams in direction dir.
func (f *Fake) Open(dir Direction) []*FakeStream {
	var out []*FakeStream
	for _, s := range f.Streams() {
		if s.Dir == dir && s.Running() {
			out = append(out, s)
		}
	}
	return out
}

// FakeStream is a stream opened on a Fake.
type FakeStream struct {
	Dir    Direction
	Name   string
	Config Config

	mu      sync.Mutex
	cb      func([]float32)
	onErr   func(error)
	buf     []float32
	started bool
	closed  bool
}

// Start implements Stream.
func (s *FakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: start after close", ErrStreamRuntime)
	}
	s.started = true
	return nil
}

// Close implements Stream.
func (s *FakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *FakeStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Running reports whether the stream is started and not closed.
func (s *FakeStream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.closed
}

// Pump runs one device callback. For capture streams data is copied in
// before the callback; for playback streams the drained block is copied
// out into data. Pump on a stopped stream does nothing and returns false.
func (s *FakeStream) Pump(data []float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.closed {
		return false
	}

	if s.Dir == Capture {
		copy(s.buf, data)
		s.cb(s.buf)
		return true
	}
	s.cb(s.buf)
	copy(data, s.buf)
	return true
}

// PumpRaw runs the callback on p as is, e.g. to simulate a driver
// delivering a block of the wrong size.
func (s *FakeStream) PumpRaw(p []float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started || s.closed {
		return false
	}
	s.cb(p)
	return true
}

// Fail reports err through the stream's error callback.
func (s *FakeStream) Fail(err error) {
	if s.onErr != nil {
		s.onErr(err)
	}
}
