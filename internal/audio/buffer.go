package audio

import "math"

// Buffer is a decoded mono waveform plus its sample rate.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Normalize scales the waveform so the largest absolute sample is 1.
// Silent buffers are returned unchanged.
func (b Buffer) Normalize() Buffer {
	peak := 0.0
	for _, s := range b.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return b
	}
	out := Buffer{Samples: make([]float64, len(b.Samples)), SampleRate: b.SampleRate}
	for i, s := range b.Samples {
		out.Samples[i] = s / peak
	}
	return out
}

// Sine generates a test tone at the given frequency and duration.
func Sine(freq float64, duration float64, sampleRate int) Buffer {
	n := int(math.Round(duration * float64(sampleRate)))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = 0.5 * math.Sin(2*math.Pi*freq*t)
	}
	return Buffer{Samples: samples, SampleRate: sampleRate}
}
