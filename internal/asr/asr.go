// Package asr defines the transcription stage behind a backend-neutral
// interface so a real model can replace the stub without touching the
// request handler.
package asr

import (
	"context"
	"fmt"

	"github.com/dhwanilabs/dhwani/internal/audio"
	"github.com/dhwanilabs/dhwani/internal/config"
)

// Result captures transcription output.
type Result struct {
	Text       string
	Confidence float64
}

// Transcriber abstracts ASR backends. Implementations must be deterministic
// for identical input and must return an error rather than an empty string
// when inference fails. Safe for concurrent use across requests.
type Transcriber interface {
	Transcribe(ctx context.Context, buf audio.Buffer) (Result, error)
	Close() error
}

// New builds the transcriber selected by the configured mode.
func New(cfg config.ASRConfig) (Transcriber, error) {
	switch cfg.Mode {
	case "stub":
		return NewStub(cfg.Language), nil
	case "exec":
		return NewExecTranscriber(cfg)
	default:
		return nil, fmt.Errorf("unknown asr mode %q", cfg.Mode)
	}
}
