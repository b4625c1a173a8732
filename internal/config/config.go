// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Service       ServiceConfig
	STT           STTConfig
	Session       SessionConfig
	Mapping       MappingConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies the service and its listen ports.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	GRPCPort    string
	MetricsPort string
}

// STTConfig holds defaults for the speech-to-text provider.
type STTConfig struct {
	Provider       string // "google" or "mock"
	LanguageCode   string
	SampleRateHz   int
	AudioEncoding  string
	InterimResults bool
	OpenTimeout    time.Duration
}

// SessionConfig bounds per-session resource usage and lifetime.
type SessionConfig struct {
	IdleTimeout   time.Duration
	ReapInterval  time.Duration
	MaxChunkBytes int64
	SendBuffer    int
}

// MappingConfig locates the text-to-sign dictionary.
type MappingConfig struct {
	DictionaryPath string
}

// KafkaConfig holds downstream fan-out configuration.
type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	TopicFinal string
	TopicSigns string
	Principal  string
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, falling back to
// defaults for anything unset or unparsable.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-sign-stream")

	return &Config{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		STT: STTConfig{
			Provider:       envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:   envOrDefault("STT_LANGUAGE_CODE", "en-US"),
			SampleRateHz:   envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			AudioEncoding:  envOrDefault("STT_AUDIO_ENCODING", "LINEAR16"),
			InterimResults: envOrDefaultBool("STT_INTERIM_RESULTS", true),
			OpenTimeout:    envOrDefaultDuration("STT_OPEN_TIMEOUT", 10*time.Second),
		},
		Session: SessionConfig{
			IdleTimeout:   envOrDefaultDuration("SESSION_IDLE_TIMEOUT", 5*time.Minute),
			ReapInterval:  envOrDefaultDuration("SESSION_REAP_INTERVAL", 30*time.Second),
			MaxChunkBytes: envOrDefaultInt64("SESSION_MAX_CHUNK_BYTES", 1024*1024),
			SendBuffer:    envOrDefaultInt("SESSION_SEND_BUFFER", 256),
		},
		Mapping: MappingConfig{
			DictionaryPath: envOrDefault("DICTIONARY_PATH", ""),
		},
		Kafka: KafkaConfig{
			Enabled:    envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:    envOrDefaultList("KAFKA_BROKERS", nil),
			TopicFinal: envOrDefault("KAFKA_TOPIC_FINAL", "session.transcript.final"),
			TopicSigns: envOrDefault("KAFKA_TOPIC_SIGNS", "session.signs.mapped"),
			Principal:  envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}
