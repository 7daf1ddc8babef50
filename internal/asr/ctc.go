package asr

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ctcBlank is the blank token index in the model vocabulary.
const ctcBlank = 0

// LoadVocab reads a vocabulary file with one token per line.
func LoadVocab(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var vocab []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		vocab = append(vocab, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is empty", path)
	}
	return vocab, nil
}

// GreedyDecodeCTC collapses per-frame logits into text: argmax each frame,
// drop blanks, and merge repeats of the last emitted token. Blanks do not
// reset the repeat merge.
func GreedyDecodeCTC(logits [][]float64, vocab []string) (string, error) {
	var sb strings.Builder
	previous := -1
	for i, frame := range logits {
		if len(frame) == 0 {
			return "", fmt.Errorf("frame %d has no logits", i)
		}
		best := 0
		for j, v := range frame {
			if v > frame[best] {
				best = j
			}
		}
		if best == ctcBlank {
			continue
		}
		if best != previous {
			if best >= len(vocab) {
				return "", fmt.Errorf("token index %d outside vocabulary of %d", best, len(vocab))
			}
			sb.WriteString(vocab[best])
		}
		previous = best
	}
	return sb.String(), nil
}
