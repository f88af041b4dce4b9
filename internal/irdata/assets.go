package irdata

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

// ErrMissingHRIR is returned when a speaker HRIR file cannot be loaded.
var ErrMissingHRIR = errors.New("irdata: missing HRIR")

// Speaker is one file of the HRIR set.
type Speaker struct {
	Name           string
	AzimuthDegrees float32
}

// Speakers lists the steerable HRIR files in speaker-slot order. Azimuths
// grow counter-clockwise so that azimuth minus head yaw keeps a source fixed
// in the room.
var Speakers = []Speaker{
	{"FL", 30},
	{"FR", -30},
	{"FC", 0},
	{"SL", 90},
	{"SR", -90},
	{"BL", 150},
	{"BR", -150},
}

// LFEName is the unsteered low-frequency HRIR file.
const LFEName = "LFE"

// Directories inside the asset tree.
const (
	HRIRDir = "hrir"
	EQDir   = "eq"
)

// Assets is a decoded HRIR set and the equalization IRs that were found.
type Assets struct {
	Positions []spatial.SourcePosition
	LFE       spatial.SourcePosition
	EQ        map[settings.Profile][]float32
}

// VirtualizerConfig returns the HRIR set as a virtualizer configuration.
func (a *Assets) VirtualizerConfig(blockSize int) spatial.Config {
	return spatial.Config{
		BlockSize: blockSize,
		Positions: a.Positions,
		LFE:       a.LFE,
	}
}

// LoadAssets reads hrir/<name>.wav for every speaker plus the LFE, and
// eq/<slug>.wav for every profile. A missing HRIR is an error; a missing
// equalization IR only makes that profile unavailable.
func LoadAssets(fsys fs.FS, log logrus.FieldLogger) (*Assets, error) {
	a := &Assets{EQ: make(map[settings.Profile][]float32)}

	for _, s := range Speakers {
		pos, err := loadHRIR(fsys, s.Name, s.AzimuthDegrees)
		if err != nil {
			return nil, err
		}
		a.Positions = append(a.Positions, pos)
	}

	lfe, err := loadHRIR(fsys, LFEName, 0)
	if err != nil {
		return nil, err
	}
	a.LFE = lfe

	for _, p := range settings.Profiles() {
		if p == settings.ProfileNone {
			continue
		}
		name := path.Join(EQDir, p.Slug()+".wav")
		ir, err := loadEQ(fsys, name)
		if err != nil {
			if log != nil {
				log.WithError(err).WithField("profile", p.String()).Warn("equalization profile unavailable")
			}
			continue
		}
		a.EQ[p] = ir
	}

	return a, nil
}

func loadHRIR(fsys fs.FS, name string, azimuth float32) (spatial.SourcePosition, error) {
	file := path.Join(HRIRDir, name+".wav")
	blob, err := fs.ReadFile(fsys, file)
	if err != nil {
		return spatial.SourcePosition{}, fmt.Errorf("%w: %s: %w", ErrMissingHRIR, file, err)
	}

	pcm, err := DecodeWAV(blob)
	if err != nil {
		return spatial.SourcePosition{}, fmt.Errorf("%w: %s: %w", ErrMissingHRIR, file, err)
	}
	if pcm.Channels != 2 {
		return spatial.SourcePosition{}, fmt.Errorf("%w: %s has %d channels, want 2", ErrMissingHRIR, file, pcm.Channels)
	}

	ch := pcm.Deinterleave()
	return spatial.SourcePosition{AzimuthDegrees: azimuth, Left: ch[0], Right: ch[1]}, nil
}

// loadEQ returns the first channel of an equalization IR.
func loadEQ(fsys fs.FS, name string) ([]float32, error) {
	blob, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	pcm, err := DecodeWAV(blob)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return pcm.Channel(0)
}
