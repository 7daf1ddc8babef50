package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// DecodeWAV reads a PCM WAV stream and produces a mono Buffer. Multi-channel
// audio is downmixed by averaging channels. When resample is true and the
// embedded rate differs from targetRate, the waveform is resampled; otherwise
// the original rate is kept and left for the validator to judge.
func DecodeWAV(r io.ReadSeeker, targetRate int, resample bool) (Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, newValidationError(ReasonDecodeError, errors.New("not a valid WAV file"))
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil && err != io.EOF {
		return Buffer{}, newValidationError(ReasonDecodeError, fmt.Errorf("read PCM data: %w", err))
	}
	if pcm == nil || len(pcm.Data) == 0 {
		return Buffer{}, newValidationError(ReasonDecodeError, errors.New("empty PCM payload"))
	}

	format := pcm.Format
	if format == nil || format.SampleRate <= 0 || format.NumChannels <= 0 {
		return Buffer{}, newValidationError(ReasonDecodeError, errors.New("missing format chunk"))
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	// 8-bit WAV stores unsigned bytes, so center before scaling; every
	// deeper depth is signed PCM already.
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}

	samples := make([]float64, len(pcm.Data))
	for i, s := range pcm.Data {
		samples[i] = (float64(s) - offset) / scale
	}

	if format.NumChannels > 1 {
		samples = downmix(samples, format.NumChannels)
	}

	buf := Buffer{Samples: samples, SampleRate: format.SampleRate}
	if resample && buf.SampleRate != targetRate {
		buf = Resample(buf, targetRate)
	}
	return buf, nil
}

// downmix averages interleaved channels into a mono signal.
func downmix(samples []float64, channels int) []float64 {
	mono := make([]float64, len(samples)/channels)
	for i := range mono {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

// Resample converts the buffer to dstRate using linear interpolation.
func Resample(b Buffer, dstRate int) Buffer {
	if b.SampleRate == dstRate || len(b.Samples) == 0 {
		return Buffer{Samples: b.Samples, SampleRate: dstRate}
	}
	ratio := float64(b.SampleRate) / float64(dstRate)
	outLen := int(float64(len(b.Samples)) / ratio)
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(b.Samples)-1 {
			out[i] = b.Samples[len(b.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = b.Samples[idx]*(1-frac) + b.Samples[idx+1]*frac
	}
	return Buffer{Samples: out, SampleRate: dstRate}
}
