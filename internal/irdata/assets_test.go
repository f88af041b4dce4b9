package irdata

import (
	"path"
	"testing"
	"testing/fstest"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

func assetFS(t *testing.T, skip ...string) fstest.MapFS {
	t.Helper()

	hrir := wavBytes(t, PCM{Samples: []float32{0.5, 0.25}, Channels: 2, SampleRate: 48000}, true)
	eq := wavBytes(t, PCM{Samples: []float32{1}, Channels: 1, SampleRate: 48000}, true)

	fsys := fstest.MapFS{}
	for _, s := range Speakers {
		fsys[path.Join(HRIRDir, s.Name+".wav")] = &fstest.MapFile{Data: hrir}
	}
	fsys[path.Join(HRIRDir, LFEName+".wav")] = &fstest.MapFile{Data: hrir}
	for _, p := range settings.Profiles()[1:] {
		fsys[path.Join(EQDir, p.Slug()+".wav")] = &fstest.MapFile{Data: eq}
	}
	for _, name := range skip {
		delete(fsys, name)
	}
	return fsys
}

func TestLoadAssets(t *testing.T) {
	a, err := LoadAssets(assetFS(t), nil)
	require.NoError(t, err)

	require.Len(t, a.Positions, len(Speakers))
	for i, s := range Speakers {
		assert.Equal(t, s.AzimuthDegrees, a.Positions[i].AzimuthDegrees)
		assert.Equal(t, []float32{0.5}, a.Positions[i].Left)
		assert.Equal(t, []float32{0.25}, a.Positions[i].Right)
	}
	assert.Equal(t, []float32{0.5}, a.LFE.Left)
	assert.Len(t, a.EQ, len(settings.Profiles())-1)

	_, err = spatial.NewSurroundVirtualizer(a.VirtualizerConfig(64))
	require.NoError(t, err)
}

func TestLoadAssetsMissingEQWarns(t *testing.T) {
	log, hook := test.NewNullLogger()

	a, err := LoadAssets(assetFS(t, "eq/k702.wav"), log)
	require.NoError(t, err)

	assert.NotContains(t, a.EQ, settings.ProfileK702)
	assert.Contains(t, a.EQ, settings.ProfileEarPods)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "K702", hook.LastEntry().Data["profile"])
}

func TestLoadAssetsMissingHRIR(t *testing.T) {
	_, err := LoadAssets(assetFS(t, "hrir/SL.wav"), nil)
	assert.ErrorIs(t, err, ErrMissingHRIR)
}
