// Package irdata decodes impulse-response WAV files and loads the HRIR and
// equalization asset set.
package irdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/dither"
)

// Errors returned by the decoder.
var (
	ErrNotWAV         = errors.New("irdata: not a WAV file")
	ErrSampleRate     = errors.New("irdata: unsupported sample rate")
	ErrBitDepth       = errors.New("irdata: unsupported bit depth")
	ErrEmpty          = errors.New("irdata: no samples")
	ErrChannelInvalid = errors.New("irdata: channel out of range")
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE
)

// PCM is decoded interleaved audio.
type PCM struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of frames.
func (p PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// Channel returns a copy of channel ch.
func (p PCM) Channel(ch int) ([]float32, error) {
	if ch < 0 || ch >= p.Channels {
		return nil, fmt.Errorf("%w: %d of %d", ErrChannelInvalid, ch, p.Channels)
	}
	out := make([]float32, p.Frames())
	for i := range out {
		out[i] = p.Samples[i*p.Channels+ch]
	}
	return out, nil
}

// Deinterleave splits p into one slice per channel.
func (p PCM) Deinterleave() [][]float32 {
	out := make([][]float32, p.Channels)
	for ch := range out {
		out[ch], _ = p.Channel(ch)
	}
	return out
}

// DecodeWAV decodes an in-memory WAV file at the engine sample rate.
// Integer PCM is scaled by its bit depth into [-1, 1); 32-bit IEEE float data
// is taken as is.
func DecodeWAV(blob []byte) (PCM, error) {
	return decode(bytes.NewReader(blob), core.DefaultSampleRate)
}

// DecodeWAVAnyRate decodes a WAV file without checking its sample rate.
func DecodeWAVAnyRate(r io.ReadSeeker) (PCM, error) {
	return decode(r, 0)
}

func decode(r io.ReadSeeker, wantRate float64) (PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return PCM{}, ErrNotWAV
	}

	if wantRate > 0 && float64(d.SampleRate) != wantRate {
		return PCM{}, fmt.Errorf("%w: %d Hz, want %.0f Hz", ErrSampleRate, d.SampleRate, wantRate)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCM{}, fmt.Errorf("irdata: read samples: %w", err)
	}
	if len(buf.Data) == 0 {
		return PCM{}, ErrEmpty
	}

	samples, err := toFloat32(buf, int(d.BitDepth), d.WavAudioFormat == formatIEEEFloat)
	if err != nil {
		return PCM{}, err
	}

	return PCM{
		Samples:    samples,
		Channels:   int(d.NumChans),
		SampleRate: int(d.SampleRate),
	}, nil
}

func toFloat32(buf *audio.IntBuffer, bitDepth int, float bool) ([]float32, error) {
	out := make([]float32, len(buf.Data))

	if float {
		if bitDepth != 32 {
			return nil, fmt.Errorf("%w: %d-bit float", ErrBitDepth, bitDepth)
		}
		// the decoder hands 32-bit words back as ints; reinterpret the bits
		for i, v := range buf.Data {
			out[i] = math.Float32frombits(uint32(int32(v)))
		}
		return out, nil
	}

	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		for i, v := range buf.Data {
			out[i] = float32(v-128) / 128
		}
	case 16, 24, 32:
		scale := 1 / float32(int64(1)<<(bitDepth-1))
		for i, v := range buf.Data {
			out[i] = float32(v) * scale
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	return out, nil
}

// EncodeOption configures EncodeWAV.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	quant *dither.Quantizer
}

// WithDither quantizes 16-bit output through q instead of plain rounding.
// q must be a 16-bit quantizer with the channel count of the encoded PCM.
func WithDither(q *dither.Quantizer) EncodeOption {
	return func(o *encodeOptions) {
		o.quant = q
	}
}

// EncodeWAV writes p to w as 16-bit PCM, or as 32-bit IEEE float when
// float is set.
func EncodeWAV(w io.WriteSeeker, p PCM, float bool, opts ...EncodeOption) error {
	if p.Channels <= 0 {
		return fmt.Errorf("%w: %d channels", ErrChannelInvalid, p.Channels)
	}

	var o encodeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	bitDepth, format := 16, formatPCM
	if float {
		bitDepth, format = 32, formatIEEEFloat
	}

	data := make([]int, len(p.Samples))
	switch {
	case float:
		for i, v := range p.Samples {
			data[i] = int(int32(math.Float32bits(v)))
		}
	case o.quant != nil:
		if o.quant.BitDepth() != bitDepth || o.quant.Channels() != p.Channels {
			return fmt.Errorf("%w: quantizer %d bit x %d ch for %d bit x %d ch",
				ErrBitDepth, o.quant.BitDepth(), o.quant.Channels(), bitDepth, p.Channels)
		}
		o.quant.QuantizeInterleaved(data, p.Samples)
	default:
		for i, v := range p.Samples {
			data[i] = int(math.Round(float64(core.Clamp(v, -1, 1)) * math.MaxInt16))
		}
	}

	enc := wav.NewEncoder(w, p.SampleRate, bitDepth, p.Channels, format)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: p.Channels, SampleRate: p.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("irdata: encode: %w", err)
	}
	return enc.Close()
}
