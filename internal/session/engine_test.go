package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-binaural/dsp/buffer"
	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/irdata"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

func tinyAssets() *irdata.Assets {
	a := &irdata.Assets{
		LFE: spatial.SourcePosition{Left: []float32{1}, Right: []float32{1}},
		EQ:  map[settings.Profile][]float32{settings.ProfileEarPods: {0.5}},
	}
	for _, s := range irdata.Speakers {
		a.Positions = append(a.Positions, spatial.SourcePosition{
			AzimuthDegrees: s.AzimuthDegrees,
			Left:           []float32{1},
			Right:          []float32{0},
		})
	}
	return a
}

func TestAssetEngineBuildsFreshState(t *testing.T) {
	factory := AssetEngine(tinyAssets(), 16, 48000)

	e1, err := factory()
	require.NoError(t, err)
	e2, err := factory()
	require.NoError(t, err)
	assert.NotSame(t, e1.Renderer, e2.Renderer)
	assert.Equal(t, 16, e1.Renderer.BlockSize())

	in := make([]float32, 16)
	in[0] = 1
	out := make([]float32, 32)
	e1.Renderer.Render(buffer.NewView(in, 1), out, spatial.LayoutMono, spatial.Orientation{})

	// mono feeds the ±30° speakers at unit gain through left-only HRIRs
	assert.InDelta(t, 2, out[0], 1e-5)
	assert.InDelta(t, 0, out[1], 1e-5)

	e1.EQ.Process(settings.ProfileEarPods, out)
	assert.InDelta(t, 1, out[0], 1e-5)

	e1.EQ.Process(settings.ProfileK702, out)
	assert.InDelta(t, 1, out[0], 1e-5, "profile without IR passes through")
}

func TestAssetEngineRejectsBadAssets(t *testing.T) {
	a := tinyAssets()
	a.Positions = a.Positions[:1]

	_, err := AssetEngine(a, 16, 48000)()
	assert.ErrorIs(t, err, spatial.ErrTooFewPositions)
}
