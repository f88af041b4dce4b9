// Command binrender renders a multichannel WAV file to binaural stereo with
// the same virtualizer and headphone equalization the live session uses.
//
// Usage:
//
//	binrender [flags] -in input.wav -out output.wav
//
// Examples:
//
//	binrender -in movie71.wav -out movie_binaural.wav
//	binrender -in music.wav -out music_k702.wav -profile k702 -yaw 20
//	binrender -in voice.wav -mode mono -play
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/dither"
	"github.com/cwbudde/algo-binaural/dsp/spatial"
	"github.com/cwbudde/algo-binaural/internal/config"
	"github.com/cwbudde/algo-binaural/internal/cpu"
	"github.com/cwbudde/algo-binaural/internal/headtrack"
	"github.com/cwbudde/algo-binaural/internal/irdata"
	"github.com/cwbudde/algo-binaural/internal/logging"
	"github.com/cwbudde/algo-binaural/internal/session"
	"github.com/cwbudde/algo-binaural/internal/settings"
)

func main() {
	env, envErr := config.LoadEnv()

	inPath := flag.String("in", "", "input WAV file (48 kHz)")
	outPath := flag.String("out", "", "output WAV file (stereo)")
	assets := flag.String("assets", env.AssetsDir, "asset directory with hrir/ and eq/")
	profileName := flag.String("profile", settings.ProfileNone.Slug(), "headphone equalization profile")
	modeName := flag.String("mode", "", "source mode: universal, stereo or mono (default: from channel count)")
	yaw := flag.Float64("yaw", env.YawDeg, "head yaw in degrees, positive turns left")
	pitch := flag.Float64("pitch", env.PitchDeg, "head pitch in degrees, positive tilts up")
	blockSize := flag.Int("block", core.DefaultBlockSize, "render block size in frames")
	floatOut := flag.Bool("float", false, "write 32-bit float instead of 16-bit PCM")
	ditherOut := flag.Bool("dither", true, "add TPDF dither when writing 16-bit PCM")
	shape := flag.Bool("shape", false, "apply F-weighted noise shaping to the dither")
	play := flag.Bool("play", false, "preview the result on the default output device")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: binrender [flags] -in input.wav [-out output.wav]\n\n")
		fmt.Fprintf(os.Stderr, "Renders 7.1, stereo or mono WAV files to binaural stereo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nProfiles:")
		for _, p := range settings.Profiles() {
			fmt.Fprintf(os.Stderr, " %s", p.Slug())
		}
		fmt.Fprintf(os.Stderr, "\n\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  binrender -in movie71.wav -out movie_binaural.wav\n")
		fmt.Fprintf(os.Stderr, "  binrender -in music.wav -out music_k702.wav -profile k702 -yaw 20\n")
	}
	flag.Parse()

	if *inPath == "" || (*outPath == "" && !*play) {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logging.Setup(env.LogLevel, env.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if envErr != nil {
		log.WithError(envErr).Warn("environment")
	}
	log.WithFields(cpu.Detect().Fields()).Debug("cpu features")

	var profile settings.Profile
	if err := profile.UnmarshalText([]byte(*profileName)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := runOptions{
		in:        *inPath,
		out:       *outPath,
		assets:    *assets,
		mode:      *modeName,
		profile:   profile,
		head:      headtrack.NewStaticSensor(*yaw, *pitch).O,
		blockSize: *blockSize,
		float:     *floatOut,
		dither:    *ditherOut,
		shape:     *shape,
		play:      *play,
	}
	if err := run(ctx, opts, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	in, out   string
	assets    string
	mode      string
	profile   settings.Profile
	head      spatial.Orientation
	blockSize int
	float     bool
	dither    bool
	shape     bool
	play      bool
}

func run(ctx context.Context, opts runOptions, log *logrus.Logger) error {
	if opts.blockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", opts.blockSize)
	}

	pcm, err := readInput(opts.in)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.in, err)
	}

	layout := spatial.LayoutForChannels(pcm.Channels)
	if opts.mode != "" {
		var m settings.SourceMode
		if err := m.UnmarshalText([]byte(opts.mode)); err != nil {
			return err
		}
		layout = spatial.LayoutForChannels(m.Channels())
	}
	if pcm.Channels < layout.Channels() {
		return fmt.Errorf("%s has %d channels, %s needs %d", opts.in, pcm.Channels, layout, layout.Channels())
	}

	a, err := irdata.LoadAssets(os.DirFS(opts.assets), logging.Component(log, "assets"))
	if err != nil {
		return err
	}
	if opts.profile != settings.ProfileNone {
		if _, ok := a.EQ[opts.profile]; !ok {
			return fmt.Errorf("no equalization IR for %s", opts.profile)
		}
	}

	engine, err := session.AssetEngine(a, opts.blockSize, core.DefaultSampleRate)()
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"input":   opts.in,
		"frames":  pcm.Frames(),
		"layout":  layout.String(),
		"profile": opts.profile.String(),
	}).Info("rendering")

	out := render(renderJob{
		Engine:      engine,
		Layout:      layout,
		Profile:     opts.profile,
		Orientation: opts.head,
		Tail:        tailFrames(a),
	}, pcm)

	if opts.out != "" {
		if err := writeWAV(opts.out, out, opts); err != nil {
			return err
		}
		log.WithField("output", opts.out).Info("written")
	}

	if opts.play {
		return preview(ctx, out.Samples, out.SampleRate, opts.blockSize)
	}
	return nil
}

// readInput decodes a 48 kHz WAV file.
func readInput(path string) (irdata.PCM, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return irdata.PCM{}, err
	}
	return irdata.DecodeWAV(blob)
}

func writeWAV(path string, p irdata.PCM, opts runOptions) error {
	var enc []irdata.EncodeOption
	if !opts.float && opts.dither {
		shaping := dither.ShapingNone
		if opts.shape {
			shaping = dither.Shaping9FC
		}
		q, err := dither.NewQuantizer(p.Channels, dither.WithShaping(shaping))
		if err != nil {
			return err
		}
		enc = append(enc, irdata.WithDither(q))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := irdata.EncodeWAV(f, p, opts.float, enc...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
