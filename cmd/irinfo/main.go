// Command irinfo prints level and band figures of impulse response WAV files.
//
// Usage:
//
//	irinfo [flags] file.wav...
//
// Examples:
//
//	irinfo res/hrir/FL.wav
//	irinfo -bands 3 res/eq/k702.wav
//	irinfo -channel 1 -db=false res/hrir/SR.wav
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-binaural/dsp/core"
	"github.com/cwbudde/algo-binaural/dsp/spectrum"
	"github.com/cwbudde/algo-binaural/internal/irdata"
)

func main() {
	bands := flag.Int("bands", 1, "fractional octave bands (1 = octave, 3 = third octave, 0 = none)")
	channel := flag.Int("channel", -1, "analyze only this channel (-1 = all)")
	db := flag.Bool("db", true, "print peak and energy in dB")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irinfo [flags] file.wav...\n\n")
		fmt.Fprintf(os.Stderr, "Prints length, peak, energy and band levels of impulse responses.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  irinfo res/hrir/FL.wav\n")
		fmt.Fprintf(os.Stderr, "  irinfo -bands 3 res/eq/k702.wav\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *bands < 0 {
		fmt.Fprintf(os.Stderr, "error: -bands must be >= 0\n")
		os.Exit(1)
	}

	for _, path := range flag.Args() {
		if err := report(os.Stdout, path, *channel, *bands, *db); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func report(w io.Writer, path string, channel, bands int, db bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pcm, err := irdata.DecodeWAVAnyRate(f)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s: %d ch, %d frames, %d Hz\n", path, pcm.Channels, pcm.Frames(), pcm.SampleRate); err != nil {
		return err
	}

	channels := pcm.Deinterleave()
	first, last := 0, len(channels)
	if channel >= 0 {
		if channel >= len(channels) {
			return fmt.Errorf("channel %d out of range [0,%d)", channel, len(channels))
		}
		first, last = channel, channel+1
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CH\tLENGTH\tPEAK\tPEAK@\tENERGY")
	fmt.Fprintln(tw, "--\t------\t----\t-----\t------")
	for ch := first; ch < last; ch++ {
		s, err := spectrum.Summarize(channels[ch])
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n", ch, s.Length, level(s.Peak, db, false), s.PeakIndex, level(s.Energy, db, true))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if bands == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}

	for ch := first; ch < last; ch++ {
		if err := bandTable(w, channels[ch], ch, float64(pcm.SampleRate), bands); err != nil {
			return err
		}
	}
	return nil
}

func bandTable(w io.Writer, ir []float32, ch int, sampleRate float64, fraction int) error {
	resp, err := spectrum.Analyze(ir, sampleRate)
	if err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}
	list, err := spectrum.OctaveBands(resp, fraction)
	if err != nil {
		return fmt.Errorf("channel %d: %w", ch, err)
	}

	if _, err := fmt.Fprintf(w, "\nchannel %d, 1/%d octave bands:\n", ch, fraction); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CENTER (Hz)\tLEVEL (dB)\t")
	fmt.Fprintln(tw, "-----------\t----------\t")
	for _, b := range list {
		fmt.Fprintf(tw, "%.1f\t%.2f\t\n", b.CenterHz, b.LevelDB)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func level(v float64, db, power bool) string {
	if !db {
		return fmt.Sprintf("%.6f", v)
	}
	if power {
		return fmt.Sprintf("%.2f dB", core.LinearPowerToDB(v))
	}
	return fmt.Sprintf("%.2f dB", core.LinearToDB(v))
}
