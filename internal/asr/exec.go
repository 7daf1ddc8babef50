package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-shellwords"

	"github.com/dhwanilabs/dhwani/internal/audio"
	"github.com/dhwanilabs/dhwani/internal/config"
)

// execTranscriber shells out to an external model CLI. The validated waveform
// is written to a scoped temp WAV and passed via --audio. With a vocabulary
// configured the command is expected to emit raw CTC logits, decoded here;
// otherwise it must emit {"text": ..., "confidence": ...} on stdout.
type execTranscriber struct {
	cmd   []string
	cfg   config.ASRConfig
	vocab []string
}

type execResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func NewExecTranscriber(cfg config.ASRConfig) (Transcriber, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse asr command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("asr command is empty")
	}

	var vocab []string
	if cfg.VocabPath != "" {
		vocab, err = LoadVocab(cfg.VocabPath)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
	}
	return &execTranscriber{cmd: args, cfg: cfg, vocab: vocab}, nil
}

func (t *execTranscriber) Transcribe(ctx context.Context, buf audio.Buffer) (Result, error) {
	file, err := os.CreateTemp("", "dhwani_asr_*.wav")
	if err != nil {
		return Result{}, fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := audio.EncodeWAV(file, buf); err != nil {
		return Result{}, fmt.Errorf("stage audio for model: %w", err)
	}

	args := append([]string{}, t.cmd[1:]...)
	args = append(args, "--audio", file.Name())
	if t.cfg.ModelPath != "" {
		args = append(args, "--model", t.cfg.ModelPath)
	}
	if t.cfg.Language != "" {
		args = append(args, "--language", t.cfg.Language)
	}

	command := exec.CommandContext(ctx, t.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return Result{}, fmt.Errorf("asr command failed: %w: %s", err, stderr.String())
	}

	if t.vocab != nil {
		return t.decodeLogits(stdout.Bytes())
	}

	var resp execResult
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return Result{}, fmt.Errorf("decode asr response: %w", err)
	}
	if resp.Text == "" {
		return Result{}, errors.New("asr command returned an empty transcription")
	}
	return Result{Text: resp.Text, Confidence: resp.Confidence}, nil
}

func (t *execTranscriber) decodeLogits(raw []byte) (Result, error) {
	var logits [][]float64
	if err := json.Unmarshal(raw, &logits); err != nil {
		return Result{}, fmt.Errorf("decode logits: %w", err)
	}
	text, err := GreedyDecodeCTC(logits, t.vocab)
	if err != nil {
		return Result{}, err
	}
	if text == "" {
		return Result{}, errors.New("ctc decode produced an empty transcription")
	}
	return Result{Text: text}, nil
}

func (t *execTranscriber) Close() error {
	return nil
}
