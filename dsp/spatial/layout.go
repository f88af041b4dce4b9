package spatial

import "fmt"

// Layout identifies the channel arrangement of the source block.
type Layout int

const (
	// Layout8 is 7.1: FL, FR, C, LFE, SL, SR, BL, BR.
	Layout8 Layout = iota
	// LayoutStereo is L, R.
	LayoutStereo
	// LayoutMono is a single channel.
	LayoutMono
)

// lfeChannel is the LFE index in Layout8.
const lfeChannel = 3

// spatialChannels8 lists the Layout8 channels rendered through HRIRs, in
// speaker slot order.
var spatialChannels8 = [speakerSlots]int{0, 1, 2, 4, 5, 6, 7}

// Channels returns the number of interleaved channels in the layout.
func (l Layout) Channels() int {
	switch l {
	case Layout8:
		return 8
	case LayoutStereo:
		return 2
	default:
		return 1
	}
}

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case Layout8:
		return "7.1"
	case LayoutStereo:
		return "stereo"
	case LayoutMono:
		return "mono"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// LayoutForChannels maps a channel count to a layout. Counts other than 8
// and 2 render as mono from the first channel.
func LayoutForChannels(n int) Layout {
	switch n {
	case 8:
		return Layout8
	case 2:
		return LayoutStereo
	default:
		return LayoutMono
	}
}
