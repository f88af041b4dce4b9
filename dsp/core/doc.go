// Package core holds the engine-wide constants and the
// small numeric helpers shared by the dsp packages.
package core
