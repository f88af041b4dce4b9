package cpu

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBestPicksWidest(t *testing.T) {
	assert.Equal(t, None, Features{}.Best())
	assert.Equal(t, AVX2, Features{HasSSE2: true, HasAVX: true, HasAVX2: true}.Best())
	assert.Equal(t, NEON, Features{HasNEON: true}.Best())
}

func TestString(t *testing.T) {
	assert.Equal(t, "none", Features{}.String())
	assert.Equal(t, "SSE2,AVX2", Features{HasSSE2: true, HasAVX2: true}.String())
}

func TestDetectMatchesArch(t *testing.T) {
	f := Detect()
	assert.Equal(t, runtime.GOARCH, f.Architecture)
	assert.Equal(t, f, Detect())

	switch runtime.GOARCH {
	case "amd64":
		assert.True(t, f.HasSSE2)
	case "arm64":
		assert.True(t, f.HasNEON)
	}

	fields := f.Fields()
	assert.Equal(t, runtime.GOARCH, fields["arch"])
	assert.Equal(t, f.Best().String(), fields["best"])
}
