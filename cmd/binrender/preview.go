package main

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
)

// blockReader adapts a BufferQueue to the io.Reader oto pulls from. It
// returns io.EOF once ctx is done and the current block is drained.
type blockReader struct {
	ctx   context.Context
	queue *buffer.BufferQueue
	cur   []float32
	pos   int
}

func (r *blockReader) Read(p []byte) (int, error) {
	n := 0
	for n+4 <= len(p) {
		if r.cur == nil {
			b, err := r.queue.AcquireReady(r.ctx)
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			r.cur, r.pos = b, 0
		}

		for r.pos < len(r.cur) && n+4 <= len(p) {
			binary.LittleEndian.PutUint32(p[n:], math.Float32bits(r.cur[r.pos]))
			r.pos++
			n += 4
		}
		if r.pos == len(r.cur) {
			r.queue.ReleaseBuf(r.cur)
			r.cur = nil
		}
	}
	return n, nil
}

// preview plays interleaved stereo at sampleRate in real time. Blocks are
// fed at the block period; the player drains them from the queue.
func preview(ctx context.Context, stereo []float32, sampleRate, blockFrames int) error {
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready

	blockLen := 2 * blockFrames
	queue := buffer.NewBufferQueue(blockLen)

	feedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	player := octx.NewPlayer(&blockReader{ctx: feedCtx, queue: queue})
	defer player.Close()
	player.Play()

	period := time.Duration(float64(blockFrames) / float64(sampleRate) * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for off := 0; off < len(stereo); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		b, ok := queue.AcquireFree()
		if !ok {
			continue
		}
		clear(b)
		off += copy(b, stereo[off:])
		queue.SubmitBuf(b)
	}

	// let the last block play out
	select {
	case <-ctx.Done():
	case <-time.After(2 * period):
	}
	cancel()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Err()
}
