// Package metrics holds the Prometheus collectors for the transcription API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranscribeRequests counts requests by outcome and rejection reason.
	// The reason label is empty for successes and server errors.
	TranscribeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dhwani_transcribe_requests_total",
		Help: "Transcription requests by outcome.",
	}, []string{"status", "reason"})

	// TranscribeDuration observes wall time of the whole request pipeline.
	TranscribeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dhwani_transcribe_duration_seconds",
		Help:    "End-to-end transcription request latency.",
		Buckets: prometheus.DefBuckets,
	})

	// AudioDuration observes the duration of accepted uploads.
	AudioDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dhwani_audio_duration_seconds",
		Help:    "Duration of accepted audio clips.",
		Buckets: []float64{1, 2.5, 5, 7.5, 10, 15},
	})
)
