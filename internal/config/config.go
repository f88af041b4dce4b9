// Package config persists user settings and reads the process environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cwbudde/algo-binaural/internal/settings"
)

// ErrConfigLoad reports a missing or unreadable configuration file. Load
// still returns usable defaults alongside it.
var ErrConfigLoad = errors.New("config: load failed")

// AppDir is the per-user directory name.
const AppDir = "audio_virtualizer"

// Config is the persisted user configuration. Nil device names select the
// built-in defaults.
type Config struct {
	EqualizerProfile settings.Profile    `json:"equalizer_profile"`
	SourceMode       settings.SourceMode `json:"audio_source_mode"`
	InputDeviceName  *string             `json:"input_device_name"`
	OutputDeviceName *string             `json:"output_device_name"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		EqualizerProfile: settings.ProfileNone,
		SourceMode:       settings.ModeUniversal,
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c
	if c.InputDeviceName != nil {
		name := *c.InputDeviceName
		out.InputDeviceName = &name
	}
	if c.OutputDeviceName != nil {
		name := *c.OutputDeviceName
		out.OutputDeviceName = &name
	}
	return out
}

// DefaultPath returns <user config dir>/audio_virtualizer/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(dir, AppDir, "config.json"), nil
}

// Load reads the configuration at path. On any failure it returns Default()
// together with an error wrapping ErrConfigLoad, so startup can continue.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %w", ErrConfigLoad, path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// Store is the process-wide configuration. Every Update is written back
// to disk.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
}

// NewStore wraps cfg, persisting changes to path.
func NewStore(path string, cfg Config) *Store {
	return &Store{path: path, cfg: cfg.Clone()}
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Update applies fn and saves the result.
func (s *Store) Update(fn func(*Config)) error {
	s.mu.Lock()
	fn(&s.cfg)
	cfg := s.cfg.Clone()
	s.mu.Unlock()

	return Save(s.path, cfg)
}
