package asr

import (
	"context"

	"github.com/dhwanilabs/dhwani/internal/audio"
)

const stubText = "This is a simulated transcription. In a full deployment this " +
	"would be the output of the speech recognition model."

type stubTranscriber struct {
	language string
}

// NewStub returns a transcriber that produces a fixed placeholder sentence.
// It stands in for the model backend until one is configured.
func NewStub(language string) Transcriber {
	return &stubTranscriber{language: language}
}

func (s *stubTranscriber) Transcribe(_ context.Context, _ audio.Buffer) (Result, error) {
	return Result{Text: stubText, Confidence: 1.0}, nil
}

func (s *stubTranscriber) Close() error {
	return nil
}
