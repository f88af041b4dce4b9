package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-binaural/internal/settings"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrConfigLoad)
	assert.Equal(t, Default(), cfg)
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"equalizer_profile": 7`), 0o644))

	cfg, err := Load(path)
	require.ErrorIs(t, err, ErrConfigLoad)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	in := "BlackHole 16ch"
	want := Config{
		EqualizerProfile: settings.ProfileK702,
		SourceMode:       settings.ModeStereo,
		InputDeviceName:  &in,
	}

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadAcceptsVariantNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "equalizer_profile": "AirPods4",
  "input_device_name": null,
  "output_device_name": "External Headphones",
  "audio_source_mode": "Mono"
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings.ProfileAirPods4, cfg.EqualizerProfile)
	assert.Equal(t, settings.ModeMono, cfg.SourceMode)
	assert.Nil(t, cfg.InputDeviceName)
	require.NotNil(t, cfg.OutputDeviceName)
	assert.Equal(t, "External Headphones", *cfg.OutputDeviceName)
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path, Default())

	require.NoError(t, s.Update(func(c *Config) {
		c.EqualizerProfile = settings.ProfileEarPods
	}))
	assert.Equal(t, settings.ProfileEarPods, s.Snapshot().EqualizerProfile)

	onDisk, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, settings.ProfileEarPods, onDisk.EqualizerProfile)
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	name := "dev"
	s := NewStore(filepath.Join(t.TempDir(), "c.json"), Config{InputDeviceName: &name})

	snap := s.Snapshot()
	*snap.InputDeviceName = "changed"
	assert.Equal(t, "dev", *s.Snapshot().InputDeviceName)
}

func TestStoreConcurrentUpdates(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "c.json"), Default())

	var wg sync.WaitGroup
	for _, p := range settings.Profiles() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(func(c *Config) { c.EqualizerProfile = p }))
		}()
	}
	wg.Wait()

	assert.Contains(t, settings.Profiles(), s.Snapshot().EqualizerProfile)
}
