package buffer

import "context"

const (
	queueFreeBuffers = 3
	queueReadySlots  = 1
)

// BufferQueue hands fixed-size blocks from a producer to a consumer that may
// block. It holds three free blocks and a single ready slot; submitting while
// a block is still waiting evicts the stale block back to the free list, so
// the consumer always sees the most recent block.
//
// BufferQueue is meant for consumers off the hardware callback path, such as
// preview playback. Use Swapchain on hardware threads.
type BufferQueue struct {
	bufLen int
	free   chan []float32
	ready  chan []float32
}

// NewBufferQueue allocates a queue of blocks with bufLen samples each.
func NewBufferQueue(bufLen int) *BufferQueue {
	if bufLen <= 0 {
		panic("buffer: buffer queue length must be positive")
	}

	q := &BufferQueue{
		bufLen: bufLen,
		free:   make(chan []float32, queueFreeBuffers),
		ready:  make(chan []float32, queueReadySlots),
	}
	for range queueFreeBuffers {
		q.free <- make([]float32, bufLen)
	}
	return q
}

// BufLen returns the block length in samples.
func (q *BufferQueue) BufLen() int { return q.bufLen }

// AcquireFree pops a free block without blocking.
func (q *BufferQueue) AcquireFree() ([]float32, bool) {
	select {
	case b := <-q.free:
		return b, true
	default:
		return nil, false
	}
}

// SubmitBuf publishes b as the ready block. A block still waiting in the
// ready slot is returned to the free list.
func (q *BufferQueue) SubmitBuf(b []float32) {
	for {
		select {
		case q.ready <- b:
			return
		default:
		}

		select {
		case stale := <-q.ready:
			q.ReleaseBuf(stale)
		default:
		}
	}
}

// AcquireReady waits for a ready block or for ctx to be done.
func (q *BufferQueue) AcquireReady(ctx context.Context) ([]float32, error) {
	select {
	case b := <-q.ready:
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ReleaseBuf returns a block to the free list. Blocks of the wrong length
// and surplus blocks are discarded.
func (q *BufferQueue) ReleaseBuf(b []float32) {
	if len(b) != q.bufLen {
		return
	}
	select {
	case q.free <- b:
	default:
	}
}
