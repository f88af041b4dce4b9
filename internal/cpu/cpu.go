// Package cpu reports the SIMD extensions the vector and FFT kernels can
// use on this machine.
package cpu

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level is a SIMD instruction set extension.
type Level int

const (
	None Level = iota
	SSE2
	AVX
	AVX2
	AVX512
	NEON
)

// String returns the extension name.
func (l Level) String() string {
	switch l {
	case SSE2:
		return "SSE2"
	case AVX:
		return "AVX"
	case AVX2:
		return "AVX2"
	case AVX512:
		return "AVX-512"
	case NEON:
		return "NEON"
	default:
		return "none"
	}
}

// Features lists the detected extensions.
type Features struct {
	HasSSE2   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasNEON   bool

	Architecture string // runtime.GOARCH
}

// Detect returns the features of the running CPU. The result is cached.
var Detect = sync.OnceValue(detect)

// Best returns the widest supported extension.
func (f Features) Best() Level {
	switch {
	case f.HasAVX512:
		return AVX512
	case f.HasAVX2:
		return AVX2
	case f.HasAVX:
		return AVX
	case f.HasSSE2:
		return SSE2
	case f.HasNEON:
		return NEON
	default:
		return None
	}
}

// List returns every supported extension, narrowest first.
func (f Features) List() []Level {
	var out []Level
	for _, c := range []struct {
		ok bool
		l  Level
	}{
		{f.HasSSE2, SSE2},
		{f.HasAVX, AVX},
		{f.HasAVX2, AVX2},
		{f.HasAVX512, AVX512},
		{f.HasNEON, NEON},
	} {
		if c.ok {
			out = append(out, c.l)
		}
	}
	return out
}

// String joins the supported extensions, e.g. "SSE2,AVX,AVX2".
func (f Features) String() string {
	list := f.List()
	if len(list) == 0 {
		return None.String()
	}
	names := make([]string, len(list))
	for i, l := range list {
		names[i] = l.String()
	}
	return strings.Join(names, ",")
}

// Fields returns the features as log fields.
func (f Features) Fields() logrus.Fields {
	return logrus.Fields{
		"arch": f.Architecture,
		"simd": f.String(),
		"best": f.Best().String(),
	}
}
