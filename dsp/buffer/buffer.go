package buffer

// Buffer wraps an interleaved float32 sample block with a fixed channel count.
// DSP functions accept raw []float32; use Samples() to bridge.
type Buffer struct {
	samples  []float32
	channels int
}

// New returns a zero-filled Buffer holding frames × channels samples.
func New(frames, channels int) *Buffer {
	if channels <= 0 {
		channels = 1
	}
	if frames < 0 {
		frames = 0
	}
	return &Buffer{samples: make([]float32, frames*channels), channels: channels}
}

// FromSlice wraps an existing interleaved slice without copying.
// Mutations to the slice are visible through the Buffer and vice versa.
func FromSlice(s []float32, channels int) *Buffer {
	if channels <= 0 {
		channels = 1
	}
	return &Buffer{samples: s, channels: channels}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float32 {
	return b.samples
}

// Len returns the number of samples (frames × channels).
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Channels returns the interleaving stride.
func (b *Buffer) Channels() int {
	return b.channels
}

// Frames returns the number of complete frames.
func (b *Buffer) Frames() int {
	return len(b.samples) / b.channels
}

// View returns a channel view over the buffer.
func (b *Buffer) View() View {
	return NewView(b.samples, b.channels)
}

// SetFrame copies one interleaved frame into frame index i. Extra source
// samples are ignored; missing ones leave the remaining channels untouched.
func (b *Buffer) SetFrame(i int, frame []float32) {
	copy(b.samples[i*b.channels:(i+1)*b.channels], frame)
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	clear(b.samples)
}

// Copy returns a deep copy of the buffer.
func (b *Buffer) Copy() *Buffer {
	s := make([]float32, len(b.samples))
	copy(s, b.samples)
	return &Buffer{samples: s, channels: b.channels}
}
