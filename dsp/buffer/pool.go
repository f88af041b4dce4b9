package buffer

import (
	"fmt"
	"sync/atomic"
)

// Pool is a fixed-capacity free list of equally sized sample blocks. All
// blocks are allocated by NewPool; Acquire and Release never allocate and
// never wait.
type Pool struct {
	free     chan *Lease
	blockLen int
}

// Lease is exclusive ownership of one pooled block. Release returns it to
// the pool it came from.
type Lease struct {
	samples []float32
	pool    *Pool
	held    atomic.Bool
}

// NewPool returns a Pool holding count blocks of blockLen samples each.
// It panics if either argument is not positive.
func NewPool(blockLen, count int) *Pool {
	if blockLen <= 0 || count <= 0 {
		panic(fmt.Sprintf("buffer: invalid pool geometry %d x %d", blockLen, count))
	}

	p := &Pool{
		free:     make(chan *Lease, count),
		blockLen: blockLen,
	}
	for range count {
		p.free <- &Lease{samples: make([]float32, blockLen), pool: p}
	}

	return p
}

// Acquire pops a free block. It reports false when the pool is exhausted;
// the caller must skip this cycle instead of waiting.
func (p *Pool) Acquire() (*Lease, bool) {
	select {
	case l := <-p.free:
		l.held.Store(true)
		return l, true
	default:
		return nil, false
	}
}

// Free returns the number of blocks currently available.
func (p *Pool) Free() int { return len(p.free) }

// Cap returns the total number of blocks owned by the pool.
func (p *Pool) Cap() int { return cap(p.free) }

// BlockLen returns the length of every block in samples.
func (p *Pool) BlockLen() int { return p.blockLen }

// Samples returns the leased block. It must not be used after Release.
func (l *Lease) Samples() []float32 { return l.samples }

// Release returns the block to its origin pool. Releasing twice, or
// releasing a nil lease, is a no-op.
func (l *Lease) Release() {
	if l == nil || !l.held.CompareAndSwap(true, false) {
		return
	}

	select {
	case l.pool.free <- l:
	default:
		// unreachable: the channel holds every block the pool ever created
	}
}
