//go:build arm64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// detect reads the CPU flags on arm64.
//
// On ARMv8 (arm64), NEON is mandatory, so HasNEON should always be true.
func detect() Features {
	return Features{
		HasNEON:      cpu.ARM64.HasASIMD,
		Architecture: runtime.GOARCH,
	}
}
