package buffer

import "testing"

func TestSwapchainCapacity(t *testing.T) {
	s := NewSwapchain(4, 8, 2, OverflowDrop)
	if s.Capacity() != 16 {
		t.Fatalf("Capacity() = %d, want 16", s.Capacity())
	}

	s = NewSwapchain(2048*8, 512*8, 3, OverflowDrop)
	if s.Capacity() != 65536 {
		t.Fatalf("Capacity() = %d, want 65536", s.Capacity())
	}
}

func TestSwapchainNotReadyUntilFullBlock(t *testing.T) {
	s := NewSwapchain(4, 8, 2, OverflowDrop)

	in, ok := s.AcquireFreeInputBuf()
	if !ok {
		t.Fatal("AcquireFreeInputBuf failed")
	}
	copy(in.Samples(), []float32{0, 1, 2, 3})
	s.SubmitInput(in)

	if _, ok := s.AcquireReadyOutputBuf(); ok {
		t.Fatal("output ready with 4 of 8 samples")
	}

	in, _ = s.AcquireFreeInputBuf()
	copy(in.Samples(), []float32{4, 5, 6, 7})
	s.SubmitInput(in)

	out, ok := s.AcquireReadyOutputBuf()
	if !ok {
		t.Fatal("output not ready with 8 samples")
	}
	defer out.Release()

	if len(out.Samples()) != 8 {
		t.Fatalf("len = %d, want 8", len(out.Samples()))
	}
	for i, v := range out.Samples() {
		if v != float32(i) {
			t.Fatalf("out[%d] = %v, want %d", i, v, i)
		}
	}
}

func TestSwapchainFIFOAcrossBlockSizes(t *testing.T) {
	s := NewSwapchain(6, 4, 4, OverflowDrop)

	var next, want float32
	for range 20 {
		in, ok := s.AcquireFreeInputBuf()
		if !ok {
			t.Fatal("input pool exhausted")
		}
		for i := range in.Samples() {
			in.Samples()[i] = next
			next++
		}
		if res := s.SubmitInput(in); res.Overrun() {
			t.Fatalf("unexpected overrun %+v", res)
		}

		for {
			out, ok := s.AcquireReadyOutputBuf()
			if !ok {
				break
			}
			for i, v := range out.Samples() {
				if v != want {
					t.Fatalf("sample %v at %d, want %v", v, i, want)
				}
				want++
			}
			out.Release()
		}
	}

	if next-want >= 4 {
		t.Fatalf("%v samples left behind, want fewer than one block", next-want)
	}
}

func TestSwapchainDropPolicyCountsOverrun(t *testing.T) {
	s := NewSwapchain(4, 4, 2, OverflowDrop)

	s.SubmitSamples(make([]float32, 8))
	res := s.SubmitSamples([]float32{1, 2, 3})
	if res.Written != 0 || res.Dropped != 3 {
		t.Fatalf("result = %+v, want {0 3}", res)
	}

	st := s.Stats()
	if st.Overruns != 1 || st.DroppedSamples != 3 {
		t.Fatalf("stats = %+v, want 1 overrun / 3 samples", st)
	}
}

func TestSwapchainOverwritePolicyKeepsNewest(t *testing.T) {
	s := NewSwapchain(4, 4, 2, OverflowOverwrite)

	s.SubmitSamples([]float32{0, 1, 2, 3, 4, 5, 6, 7})
	res := s.SubmitSamples([]float32{8, 9, 10, 11})
	if res.Written != 4 || res.Dropped != 4 {
		t.Fatalf("result = %+v, want {4 4}", res)
	}

	out, ok := s.AcquireReadyOutputBuf()
	if !ok {
		t.Fatal("output not ready")
	}
	defer out.Release()
	if out.Samples()[0] != 4 {
		t.Fatalf("oldest sample = %v, want 4", out.Samples()[0])
	}
}

func TestSwapchainOutputPoolExhaustion(t *testing.T) {
	s := NewSwapchain(4, 2, 1, OverflowDrop)
	s.SubmitSamples([]float32{1, 2, 3, 4})

	first, ok := s.AcquireReadyOutputBuf()
	if !ok {
		t.Fatal("first block not ready")
	}
	if _, ok := s.AcquireReadyOutputBuf(); ok {
		t.Fatal("second block acquired while the only output block is leased")
	}
	if s.Buffered() != 2 {
		t.Fatalf("Buffered() = %d, want 2", s.Buffered())
	}

	first.Release()
	if _, ok := s.AcquireReadyOutputBuf(); !ok {
		t.Fatal("block not ready after release")
	}
}

func TestSwapchainRecordUnderrun(t *testing.T) {
	s := NewSwapchain(4, 4, 2, OverflowDrop)
	s.RecordUnderrun()
	s.RecordOverrun(4)

	st := s.Stats()
	if st.Underruns != 1 || st.Overruns != 1 || st.DroppedSamples != 4 {
		t.Fatalf("stats = %+v", st)
	}
}

// channelBlock returns frames interleaved frames whose samples carry their
// channel index.
func channelBlock(frames, channels int) []float32 {
	b := make([]float32, frames*channels)
	for i := range b {
		b[i] = float32(i % channels)
	}
	return b
}

func requireAligned(t *testing.T, block []float32, channels int) {
	t.Helper()
	for i, v := range block {
		if v != float32(i%channels) {
			t.Fatalf("sample %d carries channel %v, want %d: %v", i, v, i%channels, block)
		}
	}
}

func TestSwapchainOverrunKeepsFramesAligned(t *testing.T) {
	const channels = 6

	for _, policy := range []OverflowPolicy{OverflowDrop, OverflowOverwrite} {
		t.Run(policy.String(), func(t *testing.T) {
			s := NewSwapchain(4*channels, 4*channels, 2, policy, WithFrameSize(channels))
			if s.Capacity()%channels != 0 {
				t.Fatalf("Capacity() = %d, not whole frames", s.Capacity())
			}

			for range 3 {
				res := s.SubmitSamples(channelBlock(4, channels))
				if res.Written%channels != 0 || res.Dropped%channels != 0 {
					t.Fatalf("result %+v splits a frame", res)
				}
			}

			for {
				out, ok := s.AcquireReadyOutputBuf()
				if !ok {
					break
				}
				requireAligned(t, out.Samples(), channels)
				out.Release()
			}

			for range 2 {
				s.SubmitSamples(channelBlock(4, channels))
			}
			out, ok := s.AcquireReadyOutputBuf()
			if !ok {
				t.Fatal("output not ready")
			}
			defer out.Release()
			requireAligned(t, out.Samples(), channels)
		})
	}
}

func TestSwapchainDropsTrailingPartialFrame(t *testing.T) {
	s := NewSwapchain(6, 6, 2, OverflowDrop, WithFrameSize(3))

	res := s.SubmitSamples([]float32{0, 1, 2, 0, 1})
	if res.Written != 3 || res.Dropped != 2 {
		t.Fatalf("result = %+v, want {3 2}", res)
	}
	if s.FrameSize() != 3 {
		t.Fatalf("FrameSize() = %d, want 3", s.FrameSize())
	}
}

func TestSwapchainPanicsOnSplitBlocks(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewSwapchain(8, 6, 2, OverflowDrop, WithFrameSize(3))
}
