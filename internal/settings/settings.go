// Package settings holds the user-facing engine settings shared between the
// control side and the audio threads.
package settings

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Profile selects the headphone equalization correction.
type Profile uint32

const (
	ProfileNone Profile = iota
	ProfileEarPods
	ProfileAirPods4
	ProfileK702
	ProfileDT770Pro
)

var profileInfo = [...]struct{ label, slug string }{
	ProfileNone:     {"None", "none"},
	ProfileEarPods:  {"EarPods", "earpods"},
	ProfileAirPods4: {"AirPods 4", "airpods4"},
	ProfileK702:     {"K702", "k702"},
	ProfileDT770Pro: {"DT 770 Pro", "dt770pro"},
}

// Profiles lists every profile in menu order.
func Profiles() []Profile {
	return []Profile{ProfileNone, ProfileEarPods, ProfileAirPods4, ProfileK702, ProfileDT770Pro}
}

// String returns the display label.
func (p Profile) String() string {
	if int(p) < len(profileInfo) {
		return profileInfo[p].label
	}
	return fmt.Sprintf("Profile(%d)", uint32(p))
}

// Slug returns the stable identifier used in configuration files.
func (p Profile) Slug() string {
	if int(p) < len(profileInfo) {
		return profileInfo[p].slug
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (p Profile) MarshalText() ([]byte, error) {
	if int(p) >= len(profileInfo) {
		return nil, fmt.Errorf("settings: unknown profile %d", uint32(p))
	}
	return []byte(profileInfo[p].slug), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Display labels and
// case or spacing variants of the slug ("AirPods4") are accepted.
func (p *Profile) UnmarshalText(text []byte) error {
	s := string(text)
	for i, info := range profileInfo {
		if s == info.label || foldSlug(s) == info.slug {
			*p = Profile(i)
			return nil
		}
	}
	return fmt.Errorf("settings: unknown profile %q", s)
}

func foldSlug(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

// profileFromUint32 decodes a stored profile. Unknown values fall back to
// ProfileNone.
func profileFromUint32(v uint32) Profile {
	if int(v) < len(profileInfo) {
		return Profile(v)
	}
	return ProfileNone
}

// SourceMode selects how many input channels are rendered.
type SourceMode uint32

const (
	ModeUniversal SourceMode = iota // 7.1
	ModeStereo
	ModeMono
)

var modeInfo = [...]struct {
	label, slug string
	channels    int
}{
	ModeUniversal: {"Universal (7.1)", "universal", 8},
	ModeStereo:    {"Stereo", "stereo", 2},
	ModeMono:      {"Mono", "mono", 1},
}

// Modes lists every source mode in menu order.
func Modes() []SourceMode {
	return []SourceMode{ModeUniversal, ModeStereo, ModeMono}
}

// Channels returns the input channel count rendered in this mode.
func (m SourceMode) Channels() int {
	if int(m) < len(modeInfo) {
		return modeInfo[m].channels
	}
	return modeInfo[ModeUniversal].channels
}

// String returns the display label.
func (m SourceMode) String() string {
	if int(m) < len(modeInfo) {
		return modeInfo[m].label
	}
	return fmt.Sprintf("SourceMode(%d)", uint32(m))
}

// Slug returns the stable text form used in config files and flags.
func (m SourceMode) Slug() string {
	if int(m) < len(modeInfo) {
		return modeInfo[m].slug
	}
	return modeInfo[ModeUniversal].slug
}

// MarshalText implements encoding.TextMarshaler.
func (m SourceMode) MarshalText() ([]byte, error) {
	if int(m) >= len(modeInfo) {
		return nil, fmt.Errorf("settings: unknown source mode %d", uint32(m))
	}
	return []byte(modeInfo[m].slug), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SourceMode) UnmarshalText(text []byte) error {
	s := string(text)
	for i, info := range modeInfo {
		if s == info.label || foldSlug(s) == info.slug {
			*m = SourceMode(i)
			return nil
		}
	}
	return fmt.Errorf("settings: unknown source mode %q", s)
}

// modeFromUint32 decodes a stored mode. Unknown values fall back to
// ModeUniversal.
func modeFromUint32(v uint32) SourceMode {
	if int(v) < len(modeInfo) {
		return SourceMode(v)
	}
	return ModeUniversal
}

// Live is the settings context read by the audio threads on every block.
// Each field is individually atomic; there is no cross-field consistency.
// Create one with New and share it by pointer.
type Live struct {
	profile atomic.Uint32
	mode    atomic.Uint32
	reload  atomic.Bool
}

// New returns a Live seeded with p and m.
func New(p Profile, m SourceMode) *Live {
	l := &Live{}
	l.SetProfile(p)
	l.SetMode(m)
	return l
}

// Profile returns the selected equalization profile.
func (l *Live) Profile() Profile { return profileFromUint32(l.profile.Load()) }

// SetProfile selects p.
func (l *Live) SetProfile(p Profile) { l.profile.Store(uint32(p)) }

// Mode returns the selected source mode.
func (l *Live) Mode() SourceMode { return modeFromUint32(l.mode.Load()) }

// SetMode selects m. A mode change needs new device streams, so callers
// normally follow it with RequestReload.
func (l *Live) SetMode(m SourceMode) { l.mode.Store(uint32(m)) }

// RequestReload asks the session controller to renegotiate devices.
func (l *Live) RequestReload() { l.reload.Store(true) }

// TakeReload reports and clears a pending reload request.
func (l *Live) TakeReload() bool { return l.reload.Swap(false) }
