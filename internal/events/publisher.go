// Package events publishes completed transcripts to NATS for downstream
// consumers. Publication is optional and best effort: a broker outage must
// never fail the HTTP request that produced the transcript.
package events

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dhwanilabs/dhwani/internal/config"
)

// TranscriptCompleted is the payload emitted after a successful request.
type TranscriptCompleted struct {
	RequestID   string    `json:"request_id"`
	Filename    string    `json:"filename"`
	DurationSec float64   `json:"duration_sec"`
	SampleRate  int       `json:"sample_rate"`
	Text        string    `json:"text"`
	Confidence  float64   `json:"confidence,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type Publisher struct {
	conn    *nats.Conn
	subject string
	log     *slog.Logger
}

// Connect dials the configured NATS servers. Returns (nil, nil) when events
// are disabled; a nil Publisher is safe to use.
func Connect(cfg config.EventsConfig, log *slog.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	options := []nats.Option{
		nats.Name("dhwani-asr"),
		nats.Timeout(time.Duration(cfg.ConnectTimeout) * time.Millisecond),
	}
	if cfg.Username != "" || cfg.Password != "" {
		options = append(options, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.Token != "" {
		options = append(options, nats.Token(cfg.Token))
	}
	if cfg.TLSInsecure {
		options = append(options, nats.Secure(&tls.Config{InsecureSkipVerify: true}))
	}

	url := strings.Join(cfg.Servers, ",")
	conn, err := nats.Connect(url, options...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	log.Info("connected to NATS", slog.String("servers", url), slog.String("subject", cfg.Subject))

	return &Publisher{conn: conn, subject: cfg.Subject, log: log}, nil
}

// Publish sends the event, logging failures instead of propagating them.
func (p *Publisher) Publish(ev TranscriptCompleted) {
	if p == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("failed to marshal transcript event", slog.String("error", err.Error()))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.log.Warn("failed to publish transcript event", slog.String("error", err.Error()))
	}
}

func (p *Publisher) Healthy() bool {
	return p == nil || (p.conn != nil && p.conn.Status() == nats.CONNECTED)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.log.Info("closing NATS connection")
	_ = p.conn.Drain()
	p.conn.Close()
}
