package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type TelemetryConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

type HTTPConfig struct {
	Bind             string `yaml:"bind"`
	Port             int    `yaml:"port"`
	RequestTimeoutMS int    `yaml:"request_timeout_ms"`
	MaxUploadMB      int    `yaml:"max_upload_mb"`
}

type AudioConfig struct {
	SampleRate     int     `yaml:"sample_rate"`
	MinDurationSec float64 `yaml:"min_duration_sec"`
	MaxDurationSec float64 `yaml:"max_duration_sec"`
	Resample       bool    `yaml:"resample"`
}

type ASRConfig struct {
	Mode      string `yaml:"mode"` // stub, exec
	Command   string `yaml:"command"`
	ModelPath string `yaml:"model_path"`
	VocabPath string `yaml:"vocab_path"`
	Language  string `yaml:"language"`
}

type WorkersConfig struct {
	Size int `yaml:"size"`
}

type EventsConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Servers        []string `yaml:"servers"`
	Subject        string   `yaml:"subject"`
	Username       string   `yaml:"username"`
	Password       string   `yaml:"password"`
	Token          string   `yaml:"token"`
	TLSInsecure    bool     `yaml:"tls_insecure"`
	ConnectTimeout int      `yaml:"connect_timeout_ms"`
}

type Config struct {
	ServiceName string          `yaml:"service_name"`
	Environment string          `yaml:"environment"`
	HTTP        HTTPConfig      `yaml:"http"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Audio       AudioConfig     `yaml:"audio"`
	ASR         ASRConfig       `yaml:"asr"`
	Workers     WorkersConfig   `yaml:"workers"`
	Events      EventsConfig    `yaml:"events"`
}

func Default() Config {
	return Config{
		ServiceName: "dhwani-asr",
		Environment: "development",
		HTTP: HTTPConfig{
			Bind:             "0.0.0.0",
			Port:             8000,
			RequestTimeoutMS: 30000,
			MaxUploadMB:      16,
		},
		Telemetry: TelemetryConfig{
			LogLevel:     "info",
			OTLPEndpoint: "",
			OTLPInsecure: true,
		},
		Audio: AudioConfig{
			SampleRate:     16000,
			MinDurationSec: 5.0,
			MaxDurationSec: 10.0,
			Resample:       true,
		},
		ASR: ASRConfig{
			Mode:     "stub",
			Language: "hi",
		},
		Workers: WorkersConfig{
			Size: 0, // 0 means one worker per CPU
		},
		Events: EventsConfig{
			Enabled:        false,
			Servers:        []string{"nats://localhost:4222"},
			Subject:        "asr.transcript.completed",
			ConnectTimeout: 2000,
		},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.ServiceName, "DHWANI_SERVICE_NAME")
	overrideString(&cfg.Environment, "DHWANI_ENVIRONMENT")
	overrideString(&cfg.HTTP.Bind, "DHWANI_HTTP_BIND")
	overrideInt(&cfg.HTTP.Port, "DHWANI_HTTP_PORT")
	overrideInt(&cfg.HTTP.RequestTimeoutMS, "DHWANI_HTTP_REQUEST_TIMEOUT_MS")
	overrideInt(&cfg.HTTP.MaxUploadMB, "DHWANI_HTTP_MAX_UPLOAD_MB")
	overrideString(&cfg.Telemetry.LogLevel, "DHWANI_TELEMETRY_LOG_LEVEL")
	overrideString(&cfg.Telemetry.OTLPEndpoint, "DHWANI_TELEMETRY_OTLP_ENDPOINT")
	overrideBool(&cfg.Telemetry.OTLPInsecure, "DHWANI_TELEMETRY_OTLP_INSECURE")
	overrideInt(&cfg.Audio.SampleRate, "DHWANI_AUDIO_SAMPLE_RATE")
	overrideFloat(&cfg.Audio.MinDurationSec, "DHWANI_AUDIO_MIN_DURATION_SEC")
	overrideFloat(&cfg.Audio.MaxDurationSec, "DHWANI_AUDIO_MAX_DURATION_SEC")
	overrideBool(&cfg.Audio.Resample, "DHWANI_AUDIO_RESAMPLE")
	overrideString(&cfg.ASR.Mode, "DHWANI_ASR_MODE")
	overrideString(&cfg.ASR.Command, "DHWANI_ASR_COMMAND")
	overrideString(&cfg.ASR.ModelPath, "DHWANI_ASR_MODEL_PATH")
	overrideString(&cfg.ASR.VocabPath, "DHWANI_ASR_VOCAB_PATH")
	overrideString(&cfg.ASR.Language, "DHWANI_ASR_LANGUAGE")
	overrideInt(&cfg.Workers.Size, "DHWANI_WORKERS_SIZE")
	overrideBool(&cfg.Events.Enabled, "DHWANI_EVENTS_ENABLED")
	overrideStringSlice(&cfg.Events.Servers, "DHWANI_EVENTS_SERVERS")
	overrideString(&cfg.Events.Subject, "DHWANI_EVENTS_SUBJECT")
	overrideString(&cfg.Events.Username, "DHWANI_EVENTS_USERNAME")
	overrideString(&cfg.Events.Password, "DHWANI_EVENTS_PASSWORD")
	overrideString(&cfg.Events.Token, "DHWANI_EVENTS_TOKEN")
	overrideBool(&cfg.Events.TLSInsecure, "DHWANI_EVENTS_TLS_INSECURE")
	overrideInt(&cfg.Events.ConnectTimeout, "DHWANI_EVENTS_CONNECT_TIMEOUT_MS")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideBool(target *bool, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat(target *float64, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			*target = parsed
		}
	}
}

func overrideStringSlice(target *[]string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		parts := strings.Split(value, ",")
		var trimmed []string
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			*target = trimmed
		}
	}
}

func validate(cfg Config) error {
	if cfg.ServiceName == "" {
		return errors.New("service_name must not be empty")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.New("http.port must be between 1 and 65535")
	}
	if cfg.HTTP.RequestTimeoutMS <= 0 {
		return errors.New("http.request_timeout_ms must be positive")
	}
	if cfg.HTTP.MaxUploadMB <= 0 {
		return errors.New("http.max_upload_mb must be positive")
	}
	if cfg.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if cfg.Audio.MinDurationSec <= 0 {
		return errors.New("audio.min_duration_sec must be positive")
	}
	if cfg.Audio.MaxDurationSec < cfg.Audio.MinDurationSec {
		return errors.New("audio.max_duration_sec must be >= audio.min_duration_sec")
	}
	switch cfg.ASR.Mode {
	case "stub", "exec":
	default:
		return errors.New("asr.mode must be one of stub|exec")
	}
	if cfg.ASR.Mode == "exec" && cfg.ASR.Command == "" {
		return errors.New("asr.command must be set when mode=exec")
	}
	if cfg.Workers.Size < 0 {
		return errors.New("workers.size must be >= 0")
	}
	if cfg.Events.Enabled {
		if len(cfg.Events.Servers) == 0 {
			return errors.New("events.servers must not be empty when events are enabled")
		}
		if cfg.Events.Subject == "" {
			return errors.New("events.subject must not be empty when events are enabled")
		}
	}
	return nil
}
