// Package buffer provides the sample containers that move PCM between the
// stages of the real-time engine.
//
// A [Buffer] owns an interleaved float32 block. A [View] selects one logical
// channel of such a block without copying. A [Pool] hands out pre-allocated
// blocks as [Lease] values that return to their origin pool when released.
// A [Ring] is a single-producer/single-consumer sample ring built on atomic
// counters, and a [Swapchain] combines pools and a ring so that a producer and
// a consumer running at different block sizes can exchange samples without
// blocking or allocating.
//
// [BufferQueue] is the blocking counterpart for consumers that are allowed to
// wait (offline or preview playback). It must never be used from a hardware
// callback.
package buffer
