package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dhwanilabs/dhwani/internal/asr"
	"github.com/dhwanilabs/dhwani/internal/audio"
	"github.com/dhwanilabs/dhwani/internal/config"
	"github.com/dhwanilabs/dhwani/internal/events"
	"github.com/dhwanilabs/dhwani/internal/features"
	"github.com/dhwanilabs/dhwani/internal/metrics"
	"github.com/dhwanilabs/dhwani/internal/workpool"
)

const internalErrorDetail = "internal processing error"

// Handler serves the transcription API. The transcriber handle is created at
// startup, shared read-only across requests, and closed at shutdown.
type Handler struct {
	cfg         config.Config
	log         *slog.Logger
	pool        *workpool.Pool
	transcriber asr.Transcriber
	extractor   *features.Extractor
	publisher   *events.Publisher
	tracer      trace.Tracer

	// TempDir overrides the upload staging directory; empty means the
	// system default.
	TempDir string
}

func NewHandler(cfg config.Config, log *slog.Logger, pool *workpool.Pool, transcriber asr.Transcriber, publisher *events.Publisher) *Handler {
	return &Handler{
		cfg:         cfg,
		log:         log,
		pool:        pool,
		transcriber: transcriber,
		extractor:   features.NewExtractor(cfg.Audio.SampleRate),
		publisher:   publisher,
		tracer:      otel.Tracer("dhwani/api"),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Post("/transcribe", h.handleTranscribe)
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "dhwani ASR API is running"})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.TranscribeDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(r.Context(),
		time.Duration(h.cfg.HTTP.RequestTimeoutMS)*time.Millisecond)
	defer cancel()

	ctx, span := h.tracer.Start(ctx, "transcribe")
	defer span.End()

	log := h.log.With(slog.String("request_id", middleware.GetReqID(ctx)))

	r.Body = http.MaxBytesReader(w, r.Body, int64(h.cfg.HTTP.MaxUploadMB)<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			metrics.TranscribeRequests.WithLabelValues("client_error", "").Inc()
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Detail: fmt.Sprintf("upload exceeds %d MB limit", h.cfg.HTTP.MaxUploadMB),
			})
			return
		}
		metrics.TranscribeRequests.WithLabelValues("client_error", "").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: `missing multipart field "file"`})
		return
	}
	defer file.Close()

	if err := audio.CheckFormat(header.Filename, header.Header.Get("Content-Type")); err != nil {
		h.fail(w, log, err)
		return
	}

	tmpPath, err := h.stageUpload(file)
	if tmpPath != "" {
		defer func() {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				log.Warn("failed to remove temp file",
					slog.String("path", tmpPath), slog.String("error", err.Error()))
			}
		}()
	}
	if err != nil {
		h.fail(w, log, fmt.Errorf("stage upload: %w", err))
		return
	}

	buf, err := h.decode(ctx, tmpPath)
	if err != nil {
		h.fail(w, log, err)
		return
	}

	if err := audio.Validate(buf, audio.Limits{
		SampleRate:     h.cfg.Audio.SampleRate,
		MinDurationSec: h.cfg.Audio.MinDurationSec,
		MaxDurationSec: h.cfg.Audio.MaxDurationSec,
	}); err != nil {
		h.fail(w, log, err)
		return
	}

	normalized := buf.Normalize()

	set, err := h.extract(ctx, normalized)
	if err != nil {
		h.fail(w, log, fmt.Errorf("extract features: %w", err))
		return
	}

	result, err := h.transcribe(ctx, normalized)
	if err != nil {
		h.fail(w, log, fmt.Errorf("transcribe: %w", err))
		return
	}

	metrics.TranscribeRequests.WithLabelValues("ok", "").Inc()
	metrics.AudioDuration.Observe(buf.Duration())

	h.publisher.Publish(events.TranscriptCompleted{
		RequestID:   middleware.GetReqID(ctx),
		Filename:    header.Filename,
		DurationSec: buf.Duration(),
		SampleRate:  buf.SampleRate,
		Text:        result.Text,
		Confidence:  result.Confidence,
		Timestamp:   time.Now().UTC(),
	})

	writeJSON(w, http.StatusOK, TranscribeResponse{
		Filename:      header.Filename,
		Duration:      fmt.Sprintf("%.2fs", buf.Duration()),
		SampleRate:    fmt.Sprintf("%d Hz", buf.SampleRate),
		Features:      set,
		Transcription: result.Text,
	})
}

// stageUpload copies the upload to a uniquely named scoped temp file. The
// returned path is non-empty whenever a file was created, even on error, so
// the caller can always clean up.
func (h *Handler) stageUpload(src io.Reader) (string, error) {
	pattern := "dhwani_upload_" + uuid.NewString() + "_*.wav"
	tmp, err := os.CreateTemp(h.TempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, src); err != nil {
		return tmp.Name(), fmt.Errorf("write temp file: %w", err)
	}
	return tmp.Name(), nil
}

func (h *Handler) decode(ctx context.Context, path string) (audio.Buffer, error) {
	ctx, span := h.tracer.Start(ctx, "transcribe.decode")
	defer span.End()

	return workpool.Run(ctx, h.pool, func() (audio.Buffer, error) {
		f, err := os.Open(path)
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("open temp file: %w", err)
		}
		defer f.Close()
		return audio.DecodeWAV(f, h.cfg.Audio.SampleRate, h.cfg.Audio.Resample)
	})
}

func (h *Handler) extract(ctx context.Context, buf audio.Buffer) (features.Set, error) {
	ctx, span := h.tracer.Start(ctx, "transcribe.extract")
	defer span.End()

	return workpool.Run(ctx, h.pool, func() (features.Set, error) {
		return h.extractor.Extract(buf)
	})
}

func (h *Handler) transcribe(ctx context.Context, buf audio.Buffer) (asr.Result, error) {
	ctx, span := h.tracer.Start(ctx, "transcribe.infer")
	defer span.End()

	return workpool.Run(ctx, h.pool, func() (asr.Result, error) {
		return h.transcriber.Transcribe(ctx, buf)
	})
}

// fail maps pipeline errors to the wire: validation failures are
// client-caused and surfaced verbatim as 400 with their reason code;
// everything else is logged and returned as a generic 500.
func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *audio.ValidationError
	if errors.As(err, &verr) {
		metrics.TranscribeRequests.WithLabelValues("client_error", string(verr.Reason)).Inc()
		log.Info("rejected upload", slog.String("reason", string(verr.Reason)))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: string(verr.Reason)})
		return
	}
	metrics.TranscribeRequests.WithLabelValues("server_error", "").Inc()
	log.Error("transcription pipeline failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: internalErrorDetail})
}
