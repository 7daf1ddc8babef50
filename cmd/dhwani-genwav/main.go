// dhwani-genwav writes a sine-wave WAV file for exercising the transcription
// pipeline without real recordings.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dhwanilabs/dhwani/internal/audio"
)

func main() {
	var (
		output     string
		freq       float64
		duration   float64
		sampleRate int
	)

	flag.StringVar(&output, "output", "sample.wav", "Output file path")
	flag.Float64Var(&freq, "freq", 440, "Tone frequency in Hz")
	flag.Float64Var(&duration, "duration", 5.0, "Duration in seconds")
	flag.IntVar(&sampleRate, "sample-rate", 16000, "Sample rate in Hz")
	flag.Parse()

	if err := run(output, freq, duration, sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "dhwani-genwav: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated test audio file: %s\n", output)
	fmt.Printf("  Frequency: %g Hz\n", freq)
	fmt.Printf("  Duration: %g seconds\n", duration)
	fmt.Printf("  Sample rate: %d Hz\n", sampleRate)
}

func run(output string, freq, duration float64, sampleRate int) error {
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", duration)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if err := audio.EncodeWAV(f, audio.Sine(freq, duration, sampleRate)); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}
