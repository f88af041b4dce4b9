package core

// Engine-wide processing constants. HRIR and EQ impulse responses are
// measured at DefaultSampleRate and the real-time path never resamples.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 2048
)
