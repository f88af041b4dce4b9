package logging

import (
	"math"
	"sync/atomic"
	"time"
)

const never = math.MinInt64

// Sampler rate-limits one call site. Allow reports true at most once per
// cooldown, even when called from several goroutines at once. It is safe to
// call from audio threads: it never blocks or allocates.
type Sampler struct {
	cooldown int64
	last     atomic.Int64 // monotonic nanoseconds of the last firing
	now      func() int64
}

var epoch = time.Now()

func monotonic() int64 { return int64(time.Since(epoch)) }

// NewSampler returns a sampler that fires at most once per cooldown.
func NewSampler(cooldown time.Duration) *Sampler {
	s := &Sampler{cooldown: int64(cooldown), now: monotonic}
	s.last.Store(never)
	return s
}

// Allow reports whether the caller may log now.
func (s *Sampler) Allow() bool {
	now := s.now()
	last := s.last.Load()
	if last != never && now-last < s.cooldown {
		return false
	}
	return s.last.CompareAndSwap(last, now)
}

// Do runs fn when Allow reports true.
func (s *Sampler) Do(fn func()) {
	if s.Allow() {
		fn()
	}
}
