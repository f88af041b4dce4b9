package buffer

import "sync/atomic"

// Ring is a lock-free single-producer, single-consumer float32 sample ring.
//
// Two monotonically increasing counters track the write and read positions;
// the storage length is a power of two so positions map to slots with a mask.
// Write/WriteOverwrite must only be called by the producer, Read/ReadExact only
// by the consumer.
//
// A ring built with a frame size moves whole frames only: writes, evictions
// and reads are multiples of the frame, so both counters stay frame aligned
// and an overflow never splits an interleaved frame.
type Ring struct {
	writePos atomic.Uint64
	_        [56]byte
	readPos  atomic.Uint64
	_        [56]byte

	buf   []float32
	mask  uint64
	frame uint64
	limit uint64 // usable capacity, a multiple of frame
}

// NewRing returns a ring able to hold at least minSize samples.
func NewRing(minSize int) *Ring {
	return NewFrameRing(minSize, 1)
}

// NewFrameRing returns a ring of frame-sized units able to hold at least
// minSize samples. It panics if frame is not positive.
func NewFrameRing(minSize, frame int) *Ring {
	if frame <= 0 {
		panic("buffer: ring frame size must be positive")
	}
	minSize = max(minSize, frame)
	minSize += (frame - minSize%frame) % frame

	size := 1
	for size < minSize {
		size <<= 1
	}
	f := uint64(frame)
	return &Ring{
		buf:   make([]float32, size),
		mask:  uint64(size - 1),
		frame: f,
		limit: uint64(size) / f * f,
	}
}

// Cap returns the number of samples the ring can hold.
func (r *Ring) Cap() int { return int(r.limit) }

// FrameSize returns the number of samples moved as one unit.
func (r *Ring) FrameSize() int { return int(r.frame) }

// Available returns the number of samples ready to be read.
func (r *Ring) Available() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Free returns the number of samples that can be written without loss.
func (r *Ring) Free() int {
	return int(r.limit) - r.Available()
}

// Write copies as many whole frames of p as fit and returns the number of
// samples written. Samples that do not fit are dropped.
func (r *Ring) Write(p []float32) int {
	w := r.writePos.Load()
	free := r.limit - (w - r.readPos.Load())

	n := r.floor(min(uint64(len(p)), free))
	if n == 0 {
		return 0
	}

	r.store(w, p[:n])
	r.writePos.Store(w + n)
	return int(n)
}

// WriteOverwrite writes all whole frames of p, discarding the oldest unread
// frames when the ring is full. It returns the number of samples discarded,
// including any leading part of p that exceeds the ring capacity and a
// trailing partial frame.
func (r *Ring) WriteOverwrite(p []float32) int {
	whole := int(r.floor(uint64(len(p))))
	dropped := len(p) - whole
	p = p[:whole]
	if len(p) > int(r.limit) {
		lead := len(p) - int(r.limit)
		dropped += lead
		p = p[lead:]
	}
	if len(p) == 0 {
		return dropped
	}

	w := r.writePos.Load()
	n := uint64(len(p))
	for {
		rp := r.readPos.Load()
		if w-rp+n <= r.limit {
			break
		}
		next := w + n - r.limit
		if r.readPos.CompareAndSwap(rp, next) {
			dropped += int(next - rp)
			break
		}
	}

	r.store(w, p)
	r.writePos.Store(w + n)
	return dropped
}

// Read copies up to len(p) samples in whole frames and returns the number
// read.
func (r *Ring) Read(p []float32) int {
	for {
		rp := r.readPos.Load()
		n := r.floor(min(uint64(len(p)), r.writePos.Load()-rp))
		if n == 0 {
			return 0
		}
		r.load(rp, p[:n])
		if r.readPos.CompareAndSwap(rp, rp+n) {
			return int(n)
		}
		// the producer overwrote what was being copied; start over
	}
}

// ReadExact fills p completely or reads nothing. It reports false when fewer
// than len(p) samples are available, when len(p) is not a whole number of
// frames, or when the producer overwrote the samples while they were being
// copied.
func (r *Ring) ReadExact(p []float32) bool {
	rp := r.readPos.Load()
	n := uint64(len(p))
	if n%r.frame != 0 || r.writePos.Load()-rp < n {
		return false
	}
	r.load(rp, p)
	return r.readPos.CompareAndSwap(rp, rp+n)
}

// Reset discards all buffered samples. It must not race with either side.
func (r *Ring) Reset() {
	r.readPos.Store(r.writePos.Load())
}

func (r *Ring) floor(n uint64) uint64 { return n - n%r.frame }

func (r *Ring) store(w uint64, p []float32) {
	pos := w & r.mask
	first := uint64(len(r.buf)) - pos
	if first >= uint64(len(p)) {
		copy(r.buf[pos:], p)
		return
	}
	copy(r.buf[pos:], p[:first])
	copy(r.buf, p[first:])
}

func (r *Ring) load(rp uint64, p []float32) {
	pos := rp & r.mask
	first := uint64(len(r.buf)) - pos
	if first >= uint64(len(p)) {
		copy(p, r.buf[pos:pos+uint64(len(p))])
		return
	}
	copy(p[:first], r.buf[pos:])
	copy(p[first:], r.buf[:uint64(len(p))-first])
}
