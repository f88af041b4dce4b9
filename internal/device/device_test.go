package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiatePicksLexicographicMinimum(t *testing.T) {
	info := Info{Name: "Interface", Capabilities: []Capability{
		{Channels: 2, MinSampleRate: 44100, MaxSampleRate: 192000, MinBlockSize: 2048, MaxBlockSize: 2048},
		{Channels: 16, MinSampleRate: 48000, MaxSampleRate: 48000, MinBlockSize: 4096, MaxBlockSize: 8192},
		{Channels: 8, MinSampleRate: 44100, MaxSampleRate: 44100, MinBlockSize: 2048, MaxBlockSize: 2048},
		{Channels: 6, MinSampleRate: 48000, MaxSampleRate: 96000, MinBlockSize: 64, MaxBlockSize: 512},
		{Channels: 10, MinSampleRate: 48000, MaxSampleRate: 96000, MinBlockSize: 1024, MaxBlockSize: 4096},
	}}

	// 8ch @ 44.1k is excluded by rate; 6ch and 10ch tie on channels,
	// 10ch wins on block distance.
	got, err := Negotiate(info, Config{Channels: 8, SampleRate: 48000, BlockSize: 2048})
	require.NoError(t, err)
	assert.Equal(t, Config{Channels: 10, SampleRate: 48000, BlockSize: 2048}, got)
}

func TestNegotiateChannelDistanceDominates(t *testing.T) {
	info := Info{Capabilities: []Capability{
		{Channels: 4, MinBlockSize: 2048, MaxBlockSize: 2048},
		{Channels: 2, MinBlockSize: 128, MaxBlockSize: 256},
	}}

	got, err := Negotiate(info, Config{Channels: 2, SampleRate: 48000, BlockSize: 2048})
	require.NoError(t, err)
	assert.Equal(t, Config{Channels: 2, SampleRate: 48000, BlockSize: 256}, got)
}

func TestNegotiateUnboundedAndTies(t *testing.T) {
	info := Info{Capabilities: []Capability{
		{Channels: 2},
		{Channels: 2, MinBlockSize: 512},
	}}

	got, err := Negotiate(info, Config{Channels: 2, SampleRate: 48000, BlockSize: 2048})
	require.NoError(t, err)
	assert.Equal(t, 2048, got.BlockSize)

	got, err = Negotiate(info, Config{Channels: 2, SampleRate: 48000, BlockSize: 16})
	require.NoError(t, err)
	assert.Equal(t, 16, got.BlockSize, "first capability accepts any block")
}

func TestNegotiateNoMatchingRate(t *testing.T) {
	info := Info{Name: "USB", Capabilities: []Capability{{Channels: 2, MinSampleRate: 44100, MaxSampleRate: 44100}}}

	_, err := Negotiate(info, Config{Channels: 2, SampleRate: 48000, BlockSize: 2048})
	assert.ErrorIs(t, err, ErrUnsupportedConfig)

	_, err = Negotiate(Info{}, Config{SampleRate: 48000})
	assert.ErrorIs(t, err, ErrUnsupportedConfig)
}

func TestFind(t *testing.T) {
	infos := []Info{{Name: "A"}, {Name: "B"}}
	got, ok := Find(infos, "B")
	assert.True(t, ok)
	assert.Equal(t, "B", got.Name)

	_, ok = Find(infos, "C")
	assert.False(t, ok)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "capture", Capture.String())
	assert.Equal(t, "playback", Playback.String())
}

func TestFakeStreams(t *testing.T) {
	f := NewFake()
	f.Add(Capture, Info{Name: "Mic", Capabilities: []Capability{{Channels: 1}}})

	_, err := f.OpenInput("Nope", Config{Channels: 1, BlockSize: 2}, func([]float32) {}, nil)
	require.ErrorIs(t, err, ErrDeviceNotFound)

	var got []float32
	var streamErr error
	s, err := f.OpenInput("Mic", Config{Channels: 1, BlockSize: 2}, func(p []float32) {
		got = append(got, p...)
	}, func(err error) { streamErr = err })
	require.NoError(t, err)

	fs := f.Streams()[0]
	assert.False(t, fs.Pump([]float32{1, 2}), "not started")

	require.NoError(t, s.Start())
	assert.True(t, fs.Pump([]float32{1, 2}))
	assert.Equal(t, []float32{1, 2}, got)
	assert.Len(t, f.Open(Capture), 1)

	f.Remove(Capture, "Mic")
	assert.ErrorIs(t, streamErr, ErrStreamRuntime)

	devs, err := f.Devices(Capture)
	require.NoError(t, err)
	assert.Empty(t, devs)

	require.NoError(t, s.Close())
	assert.False(t, fs.Pump([]float32{3, 4}))
	assert.Empty(t, f.Open(Capture))
}

func TestFakePlaybackDrains(t *testing.T) {
	f := NewFake()
	f.Add(Playback, Info{Name: "Phones"})

	s, err := f.OpenOutput("Phones", Config{Channels: 2, BlockSize: 1}, func(p []float32) {
		p[0], p[1] = 0.5, -0.5
	}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	out := make([]float32, 2)
	require.True(t, f.Streams()[0].Pump(out))
	assert.Equal(t, []float32{0.5, -0.5}, out)
}

func TestFakeFailOpen(t *testing.T) {
	f := NewFake()
	f.Add(Playback, Info{Name: "Phones"})
	boom := errors.New("busy")

	f.FailOpen(boom)
	_, err := f.OpenOutput("Phones", Config{Channels: 2, BlockSize: 1}, func([]float32) {}, nil)
	assert.ErrorIs(t, err, boom)

	f.FailOpen(nil)
	_, err = f.OpenOutput("Phones", Config{Channels: 2, BlockSize: 1}, func([]float32) {}, nil)
	assert.NoError(t, err)
}

func TestFloat32sView(t *testing.T) {
	b := make([]byte, 8)
	v := float32s(b)
	require.Len(t, v, 2)
	v[1] = 1
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[4:])
	assert.Nil(t, float32s(nil))
}

func TestMalgoStreamChecksPlaybackFramesOnly(t *testing.T) {
	var errs []error
	onErr := func(err error) { errs = append(errs, err) }

	capture := &malgoStream{dir: Capture, frames: 512, onErr: onErr, mismatch: ErrBlockSizeMismatch}
	capture.checkFrames(480)
	capture.checkFrames(512)
	assert.Empty(t, errs)

	playback := &malgoStream{dir: Playback, frames: 512, onErr: onErr, mismatch: ErrBlockSizeMismatch}
	playback.checkFrames(512)
	assert.Empty(t, errs)
	playback.checkFrames(480)
	playback.checkFrames(480)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrBlockSizeMismatch)
}
