// Package features computes fixed scalar descriptors from a decoded waveform.
//
// Frame size, hop size, and window function are part of the output contract:
// identical input bytes must produce identical features across runs and
// builds. Changing any of these constants changes every reported value.
package features

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"github.com/dhwanilabs/dhwani/internal/audio"
)

const (
	// FrameSize is the analysis window length in samples.
	FrameSize = 2048
	// HopSize is the stride between successive frames in samples.
	HopSize = 512
	// NumMFCC is the number of cepstral coefficients reported.
	NumMFCC = 13

	numMelBands = 40
	melMaxHz    = 8000.0
	logFloor    = 1e-10
)

var errTooShort = errors.New("waveform shorter than one analysis frame")

// Set is the fixed-shape feature record returned for every request.
type Set struct {
	MFCCMeans            []float64 `json:"mfccs_mean"`
	SpectralCentroidMean float64   `json:"spectral_centroid_mean"`
	ZeroCrossingRateMean float64   `json:"zero_crossing_rate_mean"`
}

// Extractor holds the precomputed mel filterbank and DCT basis for a fixed
// sample rate. It is immutable after construction and safe for concurrent use.
type Extractor struct {
	sampleRate int
	melBank    [][]float64
	dctBasis   [][]float64
}

func NewExtractor(sampleRate int) *Extractor {
	return &Extractor{
		sampleRate: sampleRate,
		melBank:    melFilterbank(sampleRate),
		dctBasis:   dctIIBasis(),
	}
}

// Extract computes MFCC means, spectral centroid mean, and zero-crossing-rate
// mean over Hann-windowed frames. Deterministic for identical input.
func (e *Extractor) Extract(buf audio.Buffer) (Set, error) {
	n := len(buf.Samples)
	if n < FrameSize {
		return Set{}, errTooShort
	}

	fft := fourier.NewFFT(FrameSize)
	frame := make([]float64, FrameSize)
	spectrum := make([]complex128, FrameSize/2+1)
	magnitude := make([]float64, FrameSize/2+1)
	power := make([]float64, FrameSize/2+1)
	melEnergy := make([]float64, numMelBands)

	mfccSums := make([]float64, NumMFCC)
	centroidSum := 0.0
	zcrSum := 0.0
	frames := 0

	for start := 0; start+FrameSize <= n; start += HopSize {
		raw := buf.Samples[start : start+FrameSize]

		zcrSum += zeroCrossingRate(raw)

		copy(frame, raw)
		window.Hann(frame)
		spectrum = fft.Coefficients(spectrum, frame)
		for k, c := range spectrum {
			m := cmplx.Abs(c)
			magnitude[k] = m
			power[k] = m * m
		}

		centroidSum += e.spectralCentroid(magnitude)

		for b, filter := range e.melBank {
			sum := 0.0
			for k, w := range filter {
				sum += w * power[k]
			}
			melEnergy[b] = math.Log(math.Max(sum, logFloor))
		}
		for i, basis := range e.dctBasis {
			c := 0.0
			for j, w := range basis {
				c += w * melEnergy[j]
			}
			mfccSums[i] += c
		}
		frames++
	}

	set := Set{MFCCMeans: make([]float64, NumMFCC)}
	for i, sum := range mfccSums {
		set.MFCCMeans[i] = roundTo(sum/float64(frames), 2)
	}
	set.SpectralCentroidMean = roundTo(centroidSum/float64(frames), 2)
	set.ZeroCrossingRateMean = roundTo(zcrSum/float64(frames), 3)
	return set, nil
}

// spectralCentroid is the magnitude-weighted mean frequency of one frame.
func (e *Extractor) spectralCentroid(magnitude []float64) float64 {
	var weighted, total float64
	for k, m := range magnitude {
		freq := float64(k) * float64(e.sampleRate) / FrameSize
		weighted += freq * m
		total += m
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// zeroCrossingRate is the fraction of adjacent sample pairs that change sign.
func zeroCrossingRate(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame))
}

func roundTo(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
