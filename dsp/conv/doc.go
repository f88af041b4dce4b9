// Package conv provides real-time block convolution.
//
// [BlockConvolver] implements uniformly partitioned overlap-save convolution:
// the impulse response is split into partitions of one block each, every
// partition is transformed once at construction, and each incoming block is
// convolved by a single forward transform, a multiply-accumulate over the
// spectral history and a single inverse transform. Cost per block is
// independent of where in the impulse response the energy sits, which makes
// it suited to long head-related impulse responses.
//
// The transform backend is pluggable through [Transformer]. [NewAlgoFFT]
// returns the default real-valued backend built on algo-fft.
//
// [Direct] is a time-domain reference used by tests and offline tooling.
//
// # Usage
//
//	c, err := conv.NewBlockConvolver(2048, hrir)
//	if err != nil {
//		return err
//	}
//	for block := range blocks {
//		c.Process(block) // in place, len(block) == 2048
//	}
package conv
