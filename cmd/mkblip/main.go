// Command mkblip renders the bounce sounds to WAV files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopxl/beep"

	"sharpengine/engine/sound"
)

func main() {
	var (
		outDir = flag.String("out", ".", "Output directory.")
		rate   = flag.Int("rate", int(sound.DefaultSampleRate), "Sample rate in Hz.")
		volume = flag.Float64("volume", 0.3, "Volume 0..1.")
	)
	flag.Parse()

	if *rate <= 0 {
		fatalf("usage: mkblip [-out dir] [-rate 22050] [-volume 0.3]")
	}
	if err := run(*outDir, beep.SampleRate(*rate), *volume); err != nil {
		fatalf("mkblip: %v", err)
	}
}

func run(outDir string, rate beep.SampleRate, volume float64) error {
	x, y, err := sound.Blips(rate, volume)
	if err != nil {
		return err
	}
	for name, samples := range map[string][]int16{"bounce_x.wav": x, "bounce_y.wav": y} {
		if err := writeFile(filepath.Join(outDir, name), rate, samples); err != nil {
			return err
		}
		fmt.Printf("%s: %d samples\n", name, len(samples))
	}
	return nil
}

func writeFile(path string, rate beep.SampleRate, samples []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := sound.WriteWAV(f, rate, samples); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
