// Command virtualizer captures surround audio from a loopback device,
// renders it to head-tracked binaural stereo and plays it on headphones.
//
// Usage:
//
//	virtualizer [flags]
//
// Flags given on the command line are stored in the configuration file and
// become the new defaults. Environment variables (VIRT_*) and a .env file in
// the working directory configure logging, tracing, the asset directory and
// device overrides. SIGHUP renegotiates the devices.
//
// Examples:
//
//	virtualizer
//	virtualizer -profile k702 -mode stereo
//	virtualizer -input "BlackHole 16ch" -output "External Headphones"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/internal/config"
	"github.com/cwbudde/algo-binaural/internal/cpu"
	"github.com/cwbudde/algo-binaural/internal/device"
	"github.com/cwbudde/algo-binaural/internal/headtrack"
	"github.com/cwbudde/algo-binaural/internal/irdata"
	"github.com/cwbudde/algo-binaural/internal/logging"
	"github.com/cwbudde/algo-binaural/internal/session"
	"github.com/cwbudde/algo-binaural/internal/settings"
	"github.com/cwbudde/algo-binaural/internal/trace"
)

func main() {
	env, envErr := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "configuration file (default: user config dir)")
	assets := flag.String("assets", env.AssetsDir, "asset directory with hrir/ and eq/")
	profileName := flag.String("profile", "", "headphone equalization profile")
	modeName := flag.String("mode", "", "source mode: universal, stereo or mono")
	input := flag.String("input", "", "capture device name")
	output := flag.String("output", "", "playback device name")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: virtualizer [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders loopback surround audio to head-tracked binaural stereo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nProfiles:")
		for _, p := range settings.Profiles() {
			fmt.Fprintf(os.Stderr, " %s", p.Slug())
		}
		fmt.Fprintf(os.Stderr, "\nModes:")
		for _, m := range settings.Modes() {
			fmt.Fprintf(os.Stderr, " %s", m.Slug())
		}
		fmt.Fprintf(os.Stderr, "\n\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  virtualizer -profile k702 -mode stereo\n")
		fmt.Fprintf(os.Stderr, "  virtualizer -input \"BlackHole 16ch\" -output \"External Headphones\"\n")
	}
	flag.Parse()

	log, err := logging.Setup(env.LogLevel, env.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil {
		log.WithError(envErr).Warn("environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes := flagChanges{
		profile: *profileName,
		mode:    *modeName,
		input:   *input,
		output:  *output,
	}
	if err := run(ctx, env, *configPath, *assets, changes, log); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("virtualizer stopped")
		os.Exit(1)
	}
}

// flagChanges are user-driven configuration changes from the command line.
type flagChanges struct {
	profile, mode string
	input, output string
}

// apply validates the changes and writes them to cfg.
func (f flagChanges) apply(cfg *config.Config) error {
	if f.profile != "" {
		if err := cfg.EqualizerProfile.UnmarshalText([]byte(f.profile)); err != nil {
			return err
		}
	}
	if f.mode != "" {
		if err := cfg.SourceMode.UnmarshalText([]byte(f.mode)); err != nil {
			return err
		}
	}
	if f.input != "" {
		name := f.input
		cfg.InputDeviceName = &name
	}
	if f.output != "" {
		name := f.output
		cfg.OutputDeviceName = &name
	}
	return nil
}

func (f flagChanges) empty() bool {
	return f == flagChanges{}
}

func run(ctx context.Context, env config.Env, configPath, assetsDir string, changes flagChanges, log *logrus.Logger) error {
	log.WithFields(cpu.Detect().Fields()).Info("cpu features")

	tcfg := trace.DefaultConfig()
	tcfg.Exporter = env.TraceExporter
	tcfg.OTLPEndpoint = env.OTLPEndpoint
	if err := trace.Initialize(ctx, tcfg); err != nil {
		log.WithError(err).Warn("tracing disabled")
	}
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("trace shutdown")
		}
	}()

	store, err := openStore(configPath, changes, log)
	if err != nil {
		return err
	}
	cfg := store.Snapshot()
	live := settings.New(cfg.EqualizerProfile, cfg.SourceMode)

	a, err := irdata.LoadAssets(os.DirFS(assetsDir), logging.Component(log, "assets"))
	if err != nil {
		return fmt.Errorf("assets %s: %w", assetsDir, err)
	}

	tracker := headtrack.NewTracker()
	poller := &headtrack.Poller{
		Sensor:  headtrack.NewStaticSensor(env.YawDeg, env.PitchDeg),
		Tracker: tracker,
		Log:     logging.Component(log, "headtrack"),
	}
	go poller.Run(ctx)

	provider, err := device.NewMalgoProvider(logging.Component(log, "device"))
	if err != nil {
		return err
	}
	defer provider.Close()

	ctrl, err := session.NewController(session.Options{
		Provider:    provider,
		Settings:    live,
		Engine:      session.AssetEngine(a, core.DefaultBlockSize, core.DefaultSampleRate),
		Head:        tracker,
		DeviceNames: deviceNames(store, env),
		Log:         log,
	})
	if err != nil {
		return err
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				log.Info("reload requested")
				live.RequestReload()
			}
		}
	}()

	log.WithFields(logrus.Fields{
		"profile": cfg.EqualizerProfile.String(),
		"mode":    cfg.SourceMode.String(),
		"config":  store.Path(),
	}).Info("starting")

	return ctrl.Run(ctx)
}

// openStore loads the configuration, falling back to defaults, and persists
// any command line changes.
func openStore(path string, changes flagChanges, log logrus.FieldLogger) (*config.Store, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Warn("using default configuration")
	}

	store := config.NewStore(path, cfg)
	if changes.empty() {
		return store, nil
	}

	next := cfg.Clone()
	if err := changes.apply(&next); err != nil {
		return nil, err
	}
	if err := store.Update(func(c *config.Config) { *c = next }); err != nil {
		log.WithError(err).Warn("configuration not saved")
	}
	return store, nil
}

// deviceNames resolves the device names for each negotiation: environment
// overrides first, then the stored configuration.
func deviceNames(store *config.Store, env config.Env) func() (string, string) {
	return func() (string, string) {
		cfg := store.Snapshot()
		in, out := env.InputDevice, env.OutputDevice
		if in == "" && cfg.InputDeviceName != nil {
			in = *cfg.InputDeviceName
		}
		if out == "" && cfg.OutputDeviceName != nil {
			out = *cfg.OutputDeviceName
		}
		return in, out
	}
}
