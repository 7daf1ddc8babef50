package audio

import (
	"errors"
	"testing"
)

var testLimits = Limits{SampleRate: 16000, MinDurationSec: 5.0, MaxDurationSec: 10.0}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return verr.Reason
}

func TestCheckFormat(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		contentType string
		wantErr     bool
	}{
		{"plain wav", "clip.wav", "", false},
		{"uppercase extension", "CLIP.WAV", "audio/wav", false},
		{"x-wav content type", "clip.wav", "audio/x-wav", false},
		{"octet stream", "clip.wav", "application/octet-stream", false},
		{"charset parameter", "clip.wav", "audio/wav; charset=binary", false},
		{"mp3 extension", "clip.mp3", "", true},
		{"no extension", "clip", "audio/wav", true},
		{"text content type", "clip.wav", "text/plain", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFormat(tc.filename, tc.contentType)
			if tc.wantErr {
				if got := reasonOf(t, err); got != ReasonWrongFormat {
					t.Fatalf("expected wrong-format, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateDurationWindow(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		rate     int
		want     Reason
	}{
		{"exactly five seconds", 5.0, 16000, ""},
		{"exactly ten seconds", 10.0, 16000, ""},
		{"midpoint", 7.5, 16000, ""},
		{"too short", 3.0, 16000, ReasonTooShort},
		{"just under", 4.99, 16000, ReasonTooShort},
		{"too long", 12.0, 16000, ReasonTooLong},
		{"just over", 10.01, 16000, ReasonTooLong},
		{"wrong rate", 7.0, 8000, ReasonWrongSampleRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := Buffer{
				Samples:    make([]float64, int(tc.duration*float64(tc.rate))),
				SampleRate: tc.rate,
			}
			err := Validate(buf, testLimits)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if got := reasonOf(t, err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestValidateRateBeforeDuration(t *testing.T) {
	// A buffer that is both at the wrong rate and too short must report the
	// sample-rate failure first.
	buf := Buffer{Samples: make([]float64, 8000), SampleRate: 8000}
	if got := reasonOf(t, Validate(buf, testLimits)); got != ReasonWrongSampleRate {
		t.Fatalf("expected wrong-sample-rate, got %s", got)
	}
}
