package buffer

import "fmt"

// View is a non-owning strided view over an interleaved block. It is valid
// only while the underlying slice is.
type View struct {
	data     []float32
	channels int
}

// NewView returns a view over data interleaved with the given channel count.
// It panics if channels is not positive or data does not hold whole frames;
// both are construction-time contracts.
func NewView(data []float32, channels int) View {
	if channels <= 0 {
		panic(fmt.Sprintf("buffer: channel count must be positive, got %d", channels))
	}
	if len(data)%channels != 0 {
		panic(fmt.Sprintf("buffer: %d samples is not a multiple of %d channels", len(data), channels))
	}
	return View{data: data, channels: channels}
}

// Channels returns the number of interleaved channels.
func (v View) Channels() int { return v.channels }

// Frames returns the number of frames.
func (v View) Frames() int { return len(v.data) / v.channels }

// Data returns the underlying interleaved slice.
func (v View) Data() []float32 { return v.data }

// At returns the sample of channel ch in the given frame.
func (v View) At(frame, ch int) float32 {
	v.checkChannel(ch)
	return v.data[frame*v.channels+ch]
}

// Set stores x as the sample of channel ch in the given frame.
func (v View) Set(frame, ch int, x float32) {
	v.checkChannel(ch)
	v.data[frame*v.channels+ch] = x
}

// CopyChannelTo copies channel ch into dst and returns the number of samples
// copied, min(Frames(), len(dst)).
func (v View) CopyChannelTo(ch int, dst []float32) int {
	v.checkChannel(ch)
	n := min(v.Frames(), len(dst))
	for i, j := 0, ch; i < n; i, j = i+1, j+v.channels {
		dst[i] = v.data[j]
	}
	return n
}

// CopyChannelFrom overwrites channel ch with src and returns the number of
// samples written, min(Frames(), len(src)).
func (v View) CopyChannelFrom(ch int, src []float32) int {
	v.checkChannel(ch)
	n := min(v.Frames(), len(src))
	for i, j := 0, ch; i < n; i, j = i+1, j+v.channels {
		v.data[j] = src[i]
	}
	return n
}

func (v View) checkChannel(ch int) {
	if ch < 0 || ch >= v.channels {
		panic(fmt.Sprintf("buffer: channel index %d out of range [0,%d)", ch, v.channels))
	}
}
