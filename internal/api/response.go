package api

import (
	"encoding/json"
	"net/http"

	"github.com/dhwanilabs/dhwani/internal/features"
)

// TranscribeResponse is the success payload for POST /transcribe.
type TranscribeResponse struct {
	Filename      string       `json:"filename"`
	Duration      string       `json:"duration"`
	SampleRate    string       `json:"sample_rate"`
	Features      features.Set `json:"features"`
	Transcription string       `json:"transcription"`
}

// ErrorResponse carries the rejection reason or a generic failure message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
