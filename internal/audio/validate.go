package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Limits are the constraints a decoded upload must satisfy.
type Limits struct {
	SampleRate     int
	MinDurationSec float64
	MaxDurationSec float64
}

// wavContentTypes lists multipart content types accepted for WAV uploads.
// An empty content type is allowed since many clients omit it.
var wavContentTypes = map[string]bool{
	"":                         true,
	"audio/wav":                true,
	"audio/x-wav":              true,
	"audio/wave":               true,
	"audio/vnd.wave":           true,
	"application/octet-stream": true,
}

// CheckFormat rejects uploads whose name or declared content type does not
// indicate a WAV file. It runs before any audio content is inspected.
func CheckFormat(filename, contentType string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".wav") {
		return newValidationError(ReasonWrongFormat, fmt.Errorf("only .wav files are supported, got %q", filename))
	}
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	if !wavContentTypes[strings.ToLower(strings.TrimSpace(mediaType))] {
		return newValidationError(ReasonWrongFormat, fmt.Errorf("unsupported content type %q", contentType))
	}
	return nil
}

// Validate checks a decoded buffer against the limits. Rules run in order and
// the first failure wins: sample rate, then duration. Pure function, no side
// effects.
func Validate(b Buffer, limits Limits) error {
	if b.SampleRate != limits.SampleRate {
		return newValidationError(ReasonWrongSampleRate,
			fmt.Errorf("expected %d Hz, got %d Hz", limits.SampleRate, b.SampleRate))
	}
	duration := b.Duration()
	if duration < limits.MinDurationSec {
		return newValidationError(ReasonTooShort,
			fmt.Errorf("duration %.2fs below minimum %.2fs", duration, limits.MinDurationSec))
	}
	if duration > limits.MaxDurationSec {
		return newValidationError(ReasonTooLong,
			fmt.Errorf("duration %.2fs above maximum %.2fs", duration, limits.MaxDurationSec))
	}
	return nil
}
