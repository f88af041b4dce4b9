package buffer

import (
	"fmt"
	"sync/atomic"
)

// OverflowPolicy selects what a Swapchain does when its ring is full.
type OverflowPolicy int

const (
	// OverflowDrop silently drops the samples that do not fit.
	OverflowDrop OverflowPolicy = iota
	// OverflowOverwrite discards the oldest unread samples (newest writer wins).
	OverflowOverwrite
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDrop:
		return "drop"
	case OverflowOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// SubmitResult reports the outcome of one push into a Swapchain.
type SubmitResult struct {
	Written int
	Dropped int
}

// Overrun reports whether any samples were lost.
func (r SubmitResult) Overrun() bool { return r.Dropped > 0 }

// SwapchainStats is a snapshot of the loss counters of a Swapchain.
type SwapchainStats struct {
	Overruns       uint64 // submits that lost samples
	DroppedSamples uint64 // samples lost to overruns
	Underruns      uint64 // consumer cycles that found no ready block
}

// Swapchain moves samples from a producer working in blocks of inBuf samples
// to a consumer working in blocks of outBuf samples. Producer and consumer may
// run on different threads; neither side ever blocks or allocates.
//
// The ring holds max(inBuf, outBuf) × minPackets samples (rounded up to a
// power of two, then down to whole frames). Each side owns a free pool of
// minPackets blocks sized for that side. Overflow drops or evicts whole
// frames, so interleaved channels stay aligned after an overrun.
type Swapchain struct {
	inBuf  int
	outBuf int
	frame  int
	policy OverflowPolicy

	inPool  *Pool
	outPool *Pool
	ring    *Ring

	overruns  atomic.Uint64
	dropped   atomic.Uint64
	underruns atomic.Uint64
}

// SwapchainOption configures a Swapchain.
type SwapchainOption func(*swapchainOptions)

type swapchainOptions struct {
	frame int
}

// WithFrameSize makes the swapchain move samples in frames of n samples,
// typically the channel count of interleaved data. Both block sizes must be
// multiples of n.
func WithFrameSize(n int) SwapchainOption {
	return func(o *swapchainOptions) {
		if n > 0 {
			o.frame = n
		}
	}
}

// NewSwapchain builds a Swapchain. It panics on non-positive sizes and on
// block sizes that are not whole frames.
func NewSwapchain(inBuf, outBuf, minPackets int, policy OverflowPolicy, opts ...SwapchainOption) *Swapchain {
	if inBuf <= 0 || outBuf <= 0 || minPackets <= 0 {
		panic(fmt.Sprintf("buffer: invalid swapchain geometry in=%d out=%d packets=%d", inBuf, outBuf, minPackets))
	}

	o := swapchainOptions{frame: 1}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if inBuf%o.frame != 0 || outBuf%o.frame != 0 {
		panic(fmt.Sprintf("buffer: swapchain blocks in=%d out=%d are not whole %d-sample frames", inBuf, outBuf, o.frame))
	}

	return &Swapchain{
		inBuf:   inBuf,
		outBuf:  outBuf,
		frame:   o.frame,
		policy:  policy,
		inPool:  NewPool(inBuf, minPackets),
		outPool: NewPool(outBuf, minPackets),
		ring:    NewFrameRing(max(inBuf, outBuf)*minPackets, o.frame),
	}
}

// InBuf returns the producer block size in samples.
func (s *Swapchain) InBuf() int { return s.inBuf }

// OutBuf returns the consumer block size in samples.
func (s *Swapchain) OutBuf() int { return s.outBuf }

// FrameSize returns the number of samples moved as one unit.
func (s *Swapchain) FrameSize() int { return s.frame }

// Capacity returns the ring capacity in samples.
func (s *Swapchain) Capacity() int { return s.ring.Cap() }

// Buffered returns the number of samples waiting for the consumer.
func (s *Swapchain) Buffered() int { return s.ring.Available() }

// AcquireFreeInputBuf pops a producer-sized block. It reports false when the
// pool is exhausted; the producer must skip this cycle.
func (s *Swapchain) AcquireFreeInputBuf() (*Lease, bool) {
	return s.inPool.Acquire()
}

// SubmitInput pushes the lease's samples into the ring and releases it.
func (s *Swapchain) SubmitInput(l *Lease) SubmitResult {
	defer l.Release()
	return s.SubmitSamples(l.Samples())
}

// SubmitSamples pushes raw samples into the ring, applying the overflow
// policy when the ring is full. A trailing partial frame is dropped.
func (s *Swapchain) SubmitSamples(p []float32) SubmitResult {
	var res SubmitResult
	switch s.policy {
	case OverflowOverwrite:
		// Dropped counts evicted ring samples plus any truncated part of p.
		res.Dropped = s.ring.WriteOverwrite(p)
		res.Written = min(len(p)-len(p)%s.frame, s.ring.Cap())
	default:
		res.Written = s.ring.Write(p)
		res.Dropped = len(p) - res.Written
	}

	if res.Dropped > 0 {
		s.overruns.Add(1)
		s.dropped.Add(uint64(res.Dropped))
	}
	return res
}

// AcquireReadyOutputBuf returns a consumer-sized block filled from the ring.
// It reports false, consuming nothing, when fewer than OutBuf samples are
// buffered or no free consumer block is available. A short block is never
// returned.
func (s *Swapchain) AcquireReadyOutputBuf() (*Lease, bool) {
	if s.ring.Available() < s.outBuf {
		return nil, false
	}

	l, ok := s.outPool.Acquire()
	if !ok {
		return nil, false
	}

	if !s.ring.ReadExact(l.Samples()) {
		l.Release()
		return nil, false
	}
	return l, true
}

// RecordUnderrun counts a consumer cycle that had to be filled without a
// ready block. Not-ready results are normal while the ring fills, so the
// consumer decides when one is an underrun.
func (s *Swapchain) RecordUnderrun() {
	s.underruns.Add(1)
}

// RecordOverrun counts samples lost outside the ring, e.g. a finished block
// that found no free producer block.
func (s *Swapchain) RecordOverrun(samples int) {
	s.overruns.Add(1)
	s.dropped.Add(uint64(samples))
}

// Stats returns a snapshot of the loss counters.
func (s *Swapchain) Stats() SwapchainStats {
	return SwapchainStats{
		Overruns:       s.overruns.Load(),
		DroppedSamples: s.dropped.Load(),
		Underruns:      s.underruns.Load(),
	}
}
