package session

import (
	"fmt"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/eq"
	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/irdata"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

// Renderer turns one source block into interleaved binaural stereo.
type Renderer interface {
	BlockSize() int
	Render(in buffer.View, out []float32, layout spatial.Layout, o spatial.Orientation)
}

// Equalizer applies the selected headphone correction in place.
type Equalizer interface {
	Process(p settings.Profile, stereo []float32)
}

// Engine is the DSP state of one streaming session.
type Engine struct {
	Renderer Renderer
	EQ       Equalizer
}

// EngineFactory builds a fresh Engine. It is called once per session, so
// convolution history never leaks from one session into the next.
type EngineFactory func() (Engine, error)

// AssetEngine returns a factory building a SurroundVirtualizer and an
// equalizer bank from a.
func AssetEngine(a *irdata.Assets, blockSize int, sampleRate float64) EngineFactory {
	return func() (Engine, error) {
		v, err := spatial.NewSurroundVirtualizer(a.VirtualizerConfig(blockSize), spatial.WithSampleRate(sampleRate))
		if err != nil {
			return Engine{}, fmt.Errorf("session: virtualizer: %w", err)
		}

		bank := eq.NewBank[settings.Profile](blockSize)
		for _, p := range settings.Profiles() {
			ir, ok := a.EQ[p]
			if !ok {
				continue
			}
			if err := bank.Add(p, ir); err != nil {
				return Engine{}, fmt.Errorf("session: equalizer: %w", err)
			}
		}

		return Engine{Renderer: v, EQ: bank}, nil
	}
}
