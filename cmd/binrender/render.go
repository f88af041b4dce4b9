package main

import (
	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/irdata"
	"github.com/cwbudde/algo-binaural/internal/session"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

// renderJob describes one offline render.
type renderJob struct {
	Engine      session.Engine
	Layout      spatial.Layout
	Profile     settings.Profile
	Orientation spatial.Orientation
	// Tail is the number of silent frames appended so the convolution
	// tails ring out.
	Tail int
	// Sink receives every rendered stereo block. It may be nil.
	Sink func(block []float32)
}

// render runs in through the engine block by block and returns interleaved
// stereo. The last block is zero-padded; the output is trimmed to the input
// length plus Tail.
func render(job renderJob, in irdata.PCM) irdata.PCM {
	block := job.Engine.Renderer.BlockSize()
	channels := max(in.Channels, job.Layout.Channels())

	total := in.Frames() + job.Tail
	blocks := (total + block - 1) / block

	src := buffer.New(block, channels)
	view := src.View()
	stereo := make([]float32, 2*block)
	out := make([]float32, 0, 2*blocks*block)

	frame := 0
	for range blocks {
		src.Zero()
		for i := 0; i < block && frame+i < in.Frames(); i++ {
			src.SetFrame(i, in.Samples[(frame+i)*in.Channels:(frame+i+1)*in.Channels])
		}

		job.Engine.Renderer.Render(view, stereo, job.Layout, job.Orientation)
		if job.Engine.EQ != nil {
			job.Engine.EQ.Process(job.Profile, stereo)
		}
		if job.Sink != nil {
			job.Sink(stereo)
		}
		out = append(out, stereo...)
		frame += block
	}

	return irdata.PCM{
		Samples:    out[:2*total],
		Channels:   2,
		SampleRate: in.SampleRate,
	}
}

// tailFrames returns the longest impulse response in a, which bounds how
// long the output keeps ringing after the input ends.
func tailFrames(a *irdata.Assets) int {
	n := max(len(a.LFE.Left), len(a.LFE.Right))
	for _, p := range a.Positions {
		n = max(n, len(p.Left), len(p.Right))
	}
	eqLen := 0
	for _, ir := range a.EQ {
		eqLen = max(eqLen, len(ir))
	}
	return n + eqLen
}
