//go:build amd64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// detect reads the CPU flags on amd64.
//
// Uses golang.org/x/sys/cpu which provides portable CPUID access.
// SSE2 is always true on amd64 as it's part of the x86-64 baseline.
func detect() Features {
	return Features{
		HasSSE2:      cpu.X86.HasSSE2,
		HasAVX:       cpu.X86.HasAVX,
		HasAVX2:      cpu.X86.HasAVX2,
		HasAVX512:    cpu.X86.HasAVX512,
		Architecture: runtime.GOARCH,
	}
}
