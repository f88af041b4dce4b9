// Package headtrack publishes the listener's head orientation to the audio
// threads.
package headtrack

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-binaural/dsp/spatial"
)

// Orientation is yaw and pitch in radians.
type Orientation = spatial.Orientation

// Provider is read by the render path once per block.
type Provider interface {
	Available() bool
	Latest() Orientation
}

// OrientationOf returns p's latest orientation, or zero when p is nil or
// unavailable.
func OrientationOf(p Provider) Orientation {
	if p == nil || !p.Available() {
		return Orientation{}
	}
	return p.Latest()
}

// Tracker is a lock-free Provider. Yaw and pitch are stored separately, so a
// reader may see yaw from one update and pitch from the next.
type Tracker struct {
	yaw       atomic.Uint32
	pitch     atomic.Uint32
	available atomic.Bool
}

// NewTracker returns an unavailable tracker.
func NewTracker() *Tracker { return &Tracker{} }

// Publish stores o and marks the tracker available.
func (t *Tracker) Publish(o Orientation) {
	t.yaw.Store(math.Float32bits(o.Yaw))
	t.pitch.Store(math.Float32bits(o.Pitch))
	t.available.Store(true)
}

// SetAvailable marks the tracker available or not. The last orientation is
// kept.
func (t *Tracker) SetAvailable(ok bool) { t.available.Store(ok) }

// Available reports whether a sensor is publishing.
func (t *Tracker) Available() bool { return t.available.Load() }

// Latest returns the last published orientation.
func (t *Tracker) Latest() Orientation {
	return Orientation{
		Yaw:   math.Float32frombits(t.yaw.Load()),
		Pitch: math.Float32frombits(t.pitch.Load()),
	}
}

// Sensor is a platform head-orientation source.
type Sensor interface {
	Available() bool
	Read() (Orientation, bool)
}

// StaticSensor always reports the same orientation.
type StaticSensor struct {
	O Orientation
}

// NewStaticSensor returns a sensor fixed at the given angles in degrees.
func NewStaticSensor(yawDeg, pitchDeg float64) StaticSensor {
	return StaticSensor{O: Orientation{
		Yaw:   float32(yawDeg * math.Pi / 180),
		Pitch: float32(pitchDeg * math.Pi / 180),
	}}
}

// Available implements Sensor.
func (s StaticSensor) Available() bool { return true }

// Read implements Sensor.
func (s StaticSensor) Read() (Orientation, bool) { return s.O, true }

// DefaultPollInterval matches a 100 Hz motion update rate.
const DefaultPollInterval = 10 * time.Millisecond

// Poller copies sensor readings into a Tracker.
type Poller struct {
	Sensor   Sensor
	Tracker  *Tracker
	Interval time.Duration
	Log      logrus.FieldLogger
}

// Run polls until ctx is done. When the sensor becomes unavailable the
// tracker is marked unavailable, and the render path falls back to a
// forward-facing orientation.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasAvailable := true
	for {
		available := p.poll()
		if available != wasAvailable && p.Log != nil {
			if available {
				p.Log.Info("head tracking available")
			} else {
				p.Log.Warn("head tracking unavailable, using forward orientation")
			}
		}
		wasAvailable = available

		select {
		case <-ctx.Done():
			p.Tracker.SetAvailable(false)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) poll() bool {
	if p.Sensor == nil || !p.Sensor.Available() {
		p.Tracker.SetAvailable(false)
		return false
	}
	o, ok := p.Sensor.Read()
	if !ok {
		p.Tracker.SetAvailable(false)
		return false
	}
	p.Tracker.Publish(o)
	return true
}
