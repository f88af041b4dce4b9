// Package session negotiates device streams and keeps the render pipeline
// running across device loss, reloads and driver errors.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/internal/device"
	"github.com/cwbudde/algo-binaural/internal/headtrack"
	"github.com/cwbudde/algo-binaural/internal/logging"
	"github.com/cwbudde/algo-binaural/internal/settings"
	"github.com/cwbudde/algo-binaural/internal/trace"
)

// Device names used when the configuration names none.
const (
	DefaultInputDevice  = "BlackHole 16ch"
	DefaultOutputDevice = "External Headphones"
)

// Supervisor timing defaults.
const (
	DefaultPollInterval        = 100 * time.Millisecond
	DefaultCooldown            = time.Second
	DefaultDeviceCheckInterval = time.Second
	DefaultWarnCooldown        = 5 * time.Second
)

// State is the controller state.
type State int32

const (
	Idle State = iota
	NegotiatingDevices
	Streaming
	ErrorBackoff
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case NegotiatingDevices:
		return "NegotiatingDevices"
	case Streaming:
		return "Streaming"
	case ErrorBackoff:
		return "ErrorBackoff"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures a Controller. Provider, Settings and Engine are
// required.
type Options struct {
	Provider device.Provider
	Settings *settings.Live
	Engine   EngineFactory
	Head     headtrack.Provider

	// DeviceNames returns the configured device names; empty names and a
	// nil func select the defaults.
	DeviceNames func() (input, output string)

	BlockSize  int
	SampleRate int
	Packets    int
	Policy     buffer.OverflowPolicy

	PollInterval        time.Duration
	Cooldown            time.Duration
	DeviceCheckInterval time.Duration
	WarnCooldown        time.Duration

	Log logrus.FieldLogger
}

type streamErr struct {
	gen uint64
	err error
}

type activeSession struct {
	id       string
	gen      uint64
	inName   string
	outName  string
	in, out  device.Stream
	pipeline *Pipeline
	last     PipelineStats
}

// Controller owns the device session state machine. Step and Run must be
// called from a single goroutine; State and SessionID may be read from any.
type Controller struct {
	opts Options
	log  logrus.FieldLogger
	ctx  context.Context

	state     atomic.Int32
	sessionID atomic.Value // string

	sess         *activeSession
	gen          uint64
	errs         chan streamErr
	backoffSince time.Time
	lastCheck    time.Time

	overrunWarn  *logging.Sampler
	underrunWarn *logging.Sampler
	sensorWarn   *logging.Sampler
}

// NewController validates opts and fills in defaults.
func NewController(opts Options) (*Controller, error) {
	if opts.Provider == nil || opts.Settings == nil || opts.Engine == nil {
		return nil, errors.New("session: provider, settings and engine are required")
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = core.DefaultBlockSize
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = core.DefaultSampleRate
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.DeviceCheckInterval <= 0 {
		opts.DeviceCheckInterval = DefaultDeviceCheckInterval
	}
	if opts.WarnCooldown <= 0 {
		opts.WarnCooldown = DefaultWarnCooldown
	}

	c := &Controller{
		opts:         opts,
		log:          logging.Component(opts.Log, "session"),
		ctx:          context.Background(),
		errs:         make(chan streamErr, 8),
		overrunWarn:  logging.NewSampler(opts.WarnCooldown),
		underrunWarn: logging.NewSampler(opts.WarnCooldown),
		sensorWarn:   logging.NewSampler(opts.WarnCooldown),
	}
	c.sessionID.Store("")
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State { return State(c.state.Load()) }

// SessionID returns the id of the streaming session, or "" when none runs.
func (c *Controller) SessionID() string { return c.sessionID.Load().(string) }

// Stats returns the counters of the streaming session.
func (c *Controller) Stats() (PipelineStats, bool) {
	if c.sess == nil {
		return PipelineStats{}, false
	}
	return c.sess.pipeline.Stats(), true
}

func (c *Controller) setState(s State) {
	if prev := State(c.state.Swap(int32(s))); prev != s {
		c.log.WithField(logging.FieldState, s.String()).Debugf("state %s -> %s", prev, s)
	}
}

// Run ticks every PollInterval until ctx is done, then tears the session
// down and returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	c.Step(time.Now())
	for {
		select {
		case <-ctx.Done():
			c.teardown()
			c.setState(Idle)
			return ctx.Err()
		case now := <-ticker.C:
			c.Step(now)
		}
	}
}

// Step advances the state machine by one tick.
func (c *Controller) Step(now time.Time) {
	switch c.State() {
	case Idle:
		c.settings().TakeReload()
		c.setState(NegotiatingDevices)
		c.negotiate(now)

	case NegotiatingDevices:
		c.negotiate(now)

	case ErrorBackoff:
		if c.settings().TakeReload() || now.Sub(c.backoffSince) >= c.opts.Cooldown {
			c.setState(NegotiatingDevices)
			c.negotiate(now)
		}

	case Streaming:
		c.stream(now)
	}
}

func (c *Controller) settings() *settings.Live { return c.opts.Settings }

func (c *Controller) stream(now time.Time) {
	if err := c.takeStreamErr(); err != nil {
		c.sessionLog().WithError(err).Warn("stream error, restarting session")
		c.teardown()
		c.backoff(now)
		return
	}

	if c.settings().TakeReload() {
		c.sessionLog().Info("reload requested")
		c.teardown()
		c.setState(NegotiatingDevices)
		c.negotiate(now)
		return
	}

	if now.Sub(c.lastCheck) >= c.opts.DeviceCheckInterval {
		c.lastCheck = now
		if err := c.checkDevices(); err != nil {
			c.sessionLog().WithError(err).Warn("device lost")
			c.teardown()
			c.setState(NegotiatingDevices)
			c.negotiate(now)
			return
		}
	}

	c.supervise()
}

// takeStreamErr returns the first error reported by the current session.
// Errors from torn-down sessions are dropped.
func (c *Controller) takeStreamErr() error {
	for {
		select {
		case e := <-c.errs:
			if c.sess != nil && e.gen == c.sess.gen {
				return e.err
			}
		default:
			return nil
		}
	}
}

// errSink returns the device error callback for session gen. It never
// blocks; errors beyond the channel capacity are dropped since the first
// one already ends the session.
func (c *Controller) errSink(gen uint64) func(error) {
	return func(err error) {
		select {
		case c.errs <- streamErr{gen: gen, err: err}:
		default:
		}
	}
}

func (c *Controller) deviceNames() (string, string) {
	in, out := "", ""
	if c.opts.DeviceNames != nil {
		in, out = c.opts.DeviceNames()
	}
	if in == "" {
		in = DefaultInputDevice
	}
	if out == "" {
		out = DefaultOutputDevice
	}
	return in, out
}

func (c *Controller) negotiate(now time.Time) {
	inName, outName := c.deviceNames()
	c.gen++
	id := uuid.NewString()

	err := trace.WithSpan(c.ctx, "session.negotiate", func(ctx context.Context) error {
		sess, err := c.open(ctx, id, inName, outName)
		if err != nil {
			return err
		}
		c.sess = sess
		return nil
	}, trace.SessionAttrs(id)...)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"input":  inName,
			"output": outName,
		}).Warnf("negotiation failed, retrying in %s", c.opts.Cooldown)
		c.backoff(now)
		return
	}

	c.sessionID.Store(id)
	c.lastCheck = now
	c.setState(Streaming)
	c.sessionLog().WithFields(logrus.Fields{
		"input":  inName,
		"output": outName,
	}).Info("streaming")
}

func (c *Controller) open(ctx context.Context, id, inName, outName string) (*activeSession, error) {
	p := c.opts.Provider
	mode := c.settings().Mode()

	inInfo, err := c.findDevice(device.Capture, inName)
	if err != nil {
		return nil, err
	}
	outInfo, err := c.findDevice(device.Playback, outName)
	if err != nil {
		return nil, err
	}

	inCfg, err := device.Negotiate(inInfo, device.Config{
		Channels:   mode.Channels(),
		SampleRate: c.opts.SampleRate,
		BlockSize:  c.opts.BlockSize,
	})
	if err != nil {
		return nil, err
	}
	outCfg, err := device.Negotiate(outInfo, device.Config{
		Channels:   2,
		SampleRate: c.opts.SampleRate,
		BlockSize:  c.opts.BlockSize,
	})
	if err != nil {
		return nil, err
	}

	engine, err := c.opts.Engine()
	if err != nil {
		return nil, err
	}

	sink := c.errSink(c.gen)
	pipeline, err := NewPipeline(PipelineConfig{
		Input:   inCfg,
		Output:  outCfg,
		Packets: c.opts.Packets,
		Policy:  c.opts.Policy,
	}, engine, c.settings(), c.opts.Head, sink)
	if err != nil {
		return nil, err
	}

	// output first so the first rendered block has somewhere to go
	_, span := trace.StartSpan(ctx, "session.open_output",
		trace.StreamAttrs(device.Playback.String(), outName, outCfg.Channels, outCfg.SampleRate, outCfg.BlockSize)...)
	out, err := p.OpenOutput(outName, outCfg, pipeline.OnOutput, sink)
	if err == nil {
		if err = out.Start(); err != nil {
			out.Close()
		}
	}
	trace.RecordError(span, err)
	span.End()
	if err != nil {
		return nil, err
	}

	_, span = trace.StartSpan(ctx, "session.open_input",
		trace.StreamAttrs(device.Capture.String(), inName, inCfg.Channels, inCfg.SampleRate, inCfg.BlockSize)...)
	in, err := p.OpenInput(inName, inCfg, pipeline.OnInput, sink)
	if err == nil {
		if err = in.Start(); err != nil {
			in.Close()
		}
	}
	trace.RecordError(span, err)
	span.End()
	if err != nil {
		out.Close()
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		logging.FieldSession: id,
		"input_config":       fmt.Sprintf("%dch/%dHz/%d", inCfg.Channels, inCfg.SampleRate, inCfg.BlockSize),
		"output_config":      fmt.Sprintf("%dch/%dHz/%d", outCfg.Channels, outCfg.SampleRate, outCfg.BlockSize),
		"mode":               mode.String(),
	}).Debug("streams open")

	return &activeSession{
		id:       id,
		gen:      c.gen,
		inName:   inName,
		outName:  outName,
		in:       in,
		out:      out,
		pipeline: pipeline,
	}, nil
}

func (c *Controller) findDevice(dir device.Direction, name string) (device.Info, error) {
	infos, err := c.opts.Provider.Devices(dir)
	if err != nil {
		return device.Info{}, err
	}
	info, ok := device.Find(infos, name)
	if !ok {
		return device.Info{}, fmt.Errorf("%w: %s %q", ErrDeviceNotFound, dir, name)
	}
	return info, nil
}

func (c *Controller) checkDevices() error {
	if _, err := c.findDevice(device.Capture, c.sess.inName); err != nil {
		return err
	}
	_, err := c.findDevice(device.Playback, c.sess.outName)
	return err
}

func (c *Controller) backoff(now time.Time) {
	c.backoffSince = now
	c.setState(ErrorBackoff)
}

// teardown closes the input stream, then the output stream, and drops the
// pipeline. Safe to call without a session.
func (c *Controller) teardown() {
	if c.sess == nil {
		return
	}
	log := c.sessionLog()
	if err := c.sess.in.Close(); err != nil {
		log.WithError(err).Warn("close input")
	}
	if err := c.sess.out.Close(); err != nil {
		log.WithError(err).Warn("close output")
	}

	st := c.sess.pipeline.Stats()
	log.WithFields(logrus.Fields{
		"rendered":  st.Rendered,
		"overruns":  st.Input.Overruns + st.Output.Overruns,
		"underruns": st.Output.Underruns,
	}).Info("session closed")

	c.sess = nil
	c.sessionID.Store("")
}

// supervise turns counter deltas into rate-limited warnings.
func (c *Controller) supervise() {
	st := c.sess.pipeline.Stats()
	last := c.sess.last
	c.sess.last = st

	overruns := (st.Input.Overruns - last.Input.Overruns) + (st.Output.Overruns - last.Output.Overruns)
	dropped := (st.Input.DroppedSamples - last.Input.DroppedSamples) + (st.Output.DroppedSamples - last.Output.DroppedSamples)
	if overruns > 0 {
		c.overrunWarn.Do(func() {
			c.sessionLog().WithError(ErrBufferOverrun).WithFields(logrus.Fields{
				"count":   overruns,
				"dropped": dropped,
			}).Warn("audio overrun")
		})
	}

	if underruns := st.Output.Underruns - last.Output.Underruns; underruns > 0 {
		c.underrunWarn.Do(func() {
			c.sessionLog().WithError(ErrBufferUnderrun).WithField("count", underruns).Warn("audio underrun")
		})
	}

	if c.opts.Head != nil && !c.opts.Head.Available() {
		c.sensorWarn.Do(func() {
			c.sessionLog().WithError(ErrSensorUnavailable).Warn("rendering forward-facing")
		})
	}
}

func (c *Controller) sessionLog() *logrus.Entry {
	entry := logging.Component(c.opts.Log, "session").WithField(logging.FieldState, c.State().String())
	if c.sess != nil {
		entry = entry.WithField(logging.FieldSession, c.sess.id)
	}
	return entry
}
