package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv.
const (
	EnvConfig        = "VIRT_CONFIG"
	EnvAssets        = "VIRT_ASSETS"
	EnvLogLevel      = "VIRT_LOG_LEVEL"
	EnvLogFormat     = "VIRT_LOG_FORMAT"
	EnvTraceExporter = "VIRT_TRACE_EXPORTER"
	EnvOTLPEndpoint  = "VIRT_OTLP_ENDPOINT"
	EnvInputDevice   = "VIRT_INPUT_DEVICE"
	EnvOutputDevice  = "VIRT_OUTPUT_DEVICE"
	EnvYawDeg        = "VIRT_YAW_DEG"
	EnvPitchDeg      = "VIRT_PITCH_DEG"
)

// Env is the process environment after defaults.
type Env struct {
	ConfigPath    string // empty selects DefaultPath
	AssetsDir     string
	LogLevel      string
	LogFormat     string
	TraceExporter string
	OTLPEndpoint  string
	InputDevice   string // overrides the stored device name when set
	OutputDevice  string
	YawDeg        float64 // static head orientation
	PitchDeg      float64
}

// DefaultEnv returns the values used for unset variables.
func DefaultEnv() Env {
	return Env{
		AssetsDir:     "res",
		LogLevel:      "info",
		LogFormat:     "text",
		TraceExporter: "none",
		OTLPEndpoint:  "localhost:4317",
	}
}

// LoadEnv loads the given dotenv files (".env" when none are named; missing
// files are ignored) and reads the VIRT_* variables. Variables already set in
// the process win over dotenv values.
func LoadEnv(files ...string) (Env, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return DefaultEnv(), fmt.Errorf("config: %s: %w", f, err)
		}
	}
	return ReadEnv(os.LookupEnv)
}

// ReadEnv builds an Env from lookup.
func ReadEnv(lookup func(string) (string, bool)) (Env, error) {
	env := DefaultEnv()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvConfig, &env.ConfigPath)
	str(EnvAssets, &env.AssetsDir)
	str(EnvLogLevel, &env.LogLevel)
	str(EnvLogFormat, &env.LogFormat)
	str(EnvTraceExporter, &env.TraceExporter)
	str(EnvOTLPEndpoint, &env.OTLPEndpoint)
	str(EnvInputDevice, &env.InputDevice)
	str(EnvOutputDevice, &env.OutputDevice)

	var errs []error
	num := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
			return
		}
		*dst = f
	}
	num(EnvYawDeg, &env.YawDeg)
	num(EnvPitchDeg, &env.PitchDeg)

	return env, errors.Join(errs...)
}
