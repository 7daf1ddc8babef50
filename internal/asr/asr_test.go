package asr

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dhwanilabs/dhwani/internal/audio"
	"github.com/dhwanilabs/dhwani/internal/config"
)

func TestStubTranscriber(t *testing.T) {
	tr := NewStub("hi")
	t.Cleanup(func() { _ = tr.Close() })

	buf := audio.Sine(440, 5.0, 16000)
	first, err := tr.Transcribe(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text == "" {
		t.Fatal("stub must not return empty text")
	}
	again, err := tr.Transcribe(context.Background(), buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != again.Text {
		t.Fatal("stub transcription must be deterministic")
	}
}

func TestNewRejectsUnknownMode(t *testing.T) {
	if _, err := New(config.ASRConfig{Mode: "tensor"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestGreedyDecodeCTC(t *testing.T) {
	vocab := []string{"", "क", "ख", "ग"}
	cases := []struct {
		name   string
		logits [][]float64
		want   string
	}{
		{
			"plain sequence",
			[][]float64{
				{0, 9, 0, 0},
				{0, 0, 9, 0},
				{0, 0, 0, 9},
			},
			"कखग",
		},
		{
			"repeats merged",
			[][]float64{
				{0, 9, 0, 0},
				{0, 9, 0, 0},
				{0, 0, 9, 0},
			},
			"कख",
		},
		{
			"blanks removed without resetting merge",
			[][]float64{
				{0, 9, 0, 0},
				{9, 0, 0, 0},
				{0, 9, 0, 0},
			},
			"क",
		},
		{
			"all blanks",
			[][]float64{
				{9, 0, 0, 0},
				{9, 0, 0, 0},
			},
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GreedyDecodeCTC(tc.logits, vocab)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestGreedyDecodeCTCBadIndex(t *testing.T) {
	if _, err := GreedyDecodeCTC([][]float64{{0, 0, 0, 0, 9}}, []string{"", "a"}); err == nil {
		t.Fatal("expected error for out-of-vocabulary index")
	}
}

func TestLoadVocab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	if err := os.WriteFile(path, []byte("\nक\nख\n"), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	vocab, err := LoadVocab(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vocab) != 3 || vocab[1] != "क" {
		t.Fatalf("unexpected vocab: %v", vocab)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty vocab: %v", err)
	}
	if _, err := LoadVocab(empty); err == nil {
		t.Fatal("expected error for empty vocabulary")
	}
}

func TestExecTranscriber(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fake-asr")
	body := "#!/bin/sh\necho '{\"text\":\"नमस्ते दुनिया\",\"confidence\":0.92}'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, err := NewExecTranscriber(config.ASRConfig{Mode: "exec", Command: script, Language: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })

	res, err := tr.Transcribe(context.Background(), audio.Sine(440, 5.0, 16000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Text != "नमस्ते दुनिया" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Confidence != 0.92 {
		t.Fatalf("unexpected confidence %v", res.Confidence)
	}
}

func TestExecTranscriberRejectsEmptyText(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "fake-asr")
	body := "#!/bin/sh\necho '{\"text\":\"\",\"confidence\":0.1}'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tr, err := NewExecTranscriber(config.ASRConfig{Mode: "exec", Command: script})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tr.Transcribe(context.Background(), audio.Sine(440, 5.0, 16000)); err == nil {
		t.Fatal("expected error for empty transcription")
	}
}
