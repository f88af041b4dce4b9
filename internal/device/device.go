// Package device abstracts audio device enumeration and fixed-block
// capture/playback streams.
package device

import (
	"errors"
	"fmt"
)

// Errors returned by negotiation and providers.
var (
	ErrDeviceNotFound    = errors.New("device: not found")
	ErrUnsupportedConfig = errors.New("device: unsupported stream configuration")
	ErrStreamRuntime     = errors.New("device: stream runtime error")
	ErrBlockSizeMismatch = errors.New("device: callback block size mismatch")
)

// Direction is capture or playback.
type Direction int

const (
	Capture Direction = iota
	Playback
)

// String returns "capture" or "playback".
func (d Direction) String() string {
	if d == Capture {
		return "capture"
	}
	return "playback"
}

// Config is a fixed stream configuration. BlockSize is in frames.
type Config struct {
	Channels   int
	SampleRate int
	BlockSize  int
}

// Capability is one supported configuration range. A zero maximum means
// unbounded; a zero MinBlockSize with zero MaxBlockSize accepts any block.
type Capability struct {
	Channels      int
	MinSampleRate int
	MaxSampleRate int
	MinBlockSize  int
	MaxBlockSize  int
}

func (c Capability) coversRate(rate int) bool {
	if rate < c.MinSampleRate {
		return false
	}
	return c.MaxSampleRate == 0 || rate <= c.MaxSampleRate
}

// blockDistance is how far block lies outside the supported block range.
func (c Capability) blockDistance(block int) int {
	switch {
	case block < c.MinBlockSize:
		return c.MinBlockSize - block
	case c.MaxBlockSize > 0 && block > c.MaxBlockSize:
		return block - c.MaxBlockSize
	default:
		return 0
	}
}

func (c Capability) clampBlock(block int) int {
	block = max(block, c.MinBlockSize)
	if c.MaxBlockSize > 0 {
		block = min(block, c.MaxBlockSize)
	}
	return block
}

// Info describes one device.
type Info struct {
	Name         string
	Capabilities []Capability
}

// Stream is an open device stream. Close stops callbacks before returning.
type Stream interface {
	Start() error
	Close() error
}

// Provider enumerates devices and opens streams. fill receives each
// captured block, drain must fill each playback block; both run on the
// device's real-time thread. onErr may be called from any thread.
type Provider interface {
	Devices(dir Direction) ([]Info, error)
	OpenInput(name string, cfg Config, fill func([]float32), onErr func(error)) (Stream, error)
	OpenOutput(name string, cfg Config, drain func([]float32), onErr func(error)) (Stream, error)
}

// Find returns the device called name.
func Find(infos []Info, name string) (Info, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}

// Negotiate picks the capability of info closest to target. Capabilities
// whose sample-rate range excludes target.SampleRate are skipped; among the
// rest the one minimizing (channel distance, block distance) wins, earliest
// first on ties. The block size is clamped into the winner's range.
func Negotiate(info Info, target Config) (Config, error) {
	best := -1
	var bestCh, bestBlock int
	for i, c := range info.Capabilities {
		if !c.coversRate(target.SampleRate) {
			continue
		}
		ch := abs(c.Channels - target.Channels)
		blk := c.blockDistance(target.BlockSize)
		if best < 0 || ch < bestCh || (ch == bestCh && blk < bestBlock) {
			best, bestCh, bestBlock = i, ch, blk
		}
	}
	if best < 0 {
		return Config{}, fmt.Errorf("%w: %s has no capability at %d Hz", ErrUnsupportedConfig, info.Name, target.SampleRate)
	}

	c := info.Capabilities[best]
	return Config{
		Channels:   c.Channels,
		SampleRate: target.SampleRate,
		BlockSize:  c.clampBlock(target.BlockSize),
	}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
