package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "GRPC_PORT", "METRICS_PORT",
		"STT_PROVIDER", "STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ",
		"STT_INTERIM_RESULTS", "STT_AUDIO_ENCODING", "STT_OPEN_TIMEOUT",
		"SESSION_IDLE_TIMEOUT", "SESSION_REAP_INTERVAL", "SESSION_MAX_CHUNK_BYTES",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "LOG_LEVEL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	if cfg.Service.Principal != "svc-sign-stream" {
		t.Errorf("expected default principal 'svc-sign-stream', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.STT.SampleRateHz)
	}
	if !cfg.STT.InterimResults {
		t.Error("expected default interim results true")
	}
	if cfg.STT.AudioEncoding != "LINEAR16" {
		t.Errorf("expected default encoding 'LINEAR16', got %s", cfg.STT.AudioEncoding)
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Errorf("expected default idle timeout 5m, got %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.ReapInterval != 30*time.Second {
		t.Errorf("expected default reap interval 30s, got %v", cfg.Session.ReapInterval)
	}
	if cfg.Session.MaxChunkBytes != 1024*1024 {
		t.Errorf("expected default max chunk 1MiB, got %d", cfg.Session.MaxChunkBytes)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("STT_LANGUAGE_CODE", "es-ES")
	os.Setenv("STT_SAMPLE_RATE_HZ", "8000")
	os.Setenv("STT_INTERIM_RESULTS", "false")
	os.Setenv("STT_AUDIO_ENCODING", "MULAW")
	os.Setenv("SESSION_IDLE_TIMEOUT", "10m")
	os.Setenv("SESSION_MAX_CHUNK_BYTES", "2097152")
	os.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		for _, v := range []string{
			"SERVICE_PRINCIPAL", "HTTP_PORT", "STT_PROVIDER", "STT_LANGUAGE_CODE",
			"STT_SAMPLE_RATE_HZ", "STT_INTERIM_RESULTS", "STT_AUDIO_ENCODING",
			"SESSION_IDLE_TIMEOUT", "SESSION_MAX_CHUNK_BYTES", "KAFKA_BROKERS", "LOG_LEVEL",
		} {
			os.Unsetenv(v)
		}
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected HTTP port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "es-ES" {
		t.Errorf("expected language 'es-ES', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.STT.InterimResults {
		t.Error("expected interim results false")
	}
	if cfg.STT.AudioEncoding != "MULAW" {
		t.Errorf("expected encoding 'MULAW', got %s", cfg.STT.AudioEncoding)
	}
	if cfg.Session.IdleTimeout != 10*time.Minute {
		t.Errorf("expected idle timeout 10m, got %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.MaxChunkBytes != 2097152 {
		t.Errorf("expected max chunk 2097152, got %d", cfg.Session.MaxChunkBytes)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "a:9092" || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("expected brokers [a:9092 b:9092], got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("STT_SAMPLE_RATE_HZ", "not-a-number")
	os.Setenv("STT_INTERIM_RESULTS", "invalid")
	os.Setenv("SESSION_IDLE_TIMEOUT", "invalid")
	os.Setenv("SESSION_MAX_CHUNK_BYTES", "invalid")

	defer func() {
		os.Unsetenv("STT_SAMPLE_RATE_HZ")
		os.Unsetenv("STT_INTERIM_RESULTS")
		os.Unsetenv("SESSION_IDLE_TIMEOUT")
		os.Unsetenv("SESSION_MAX_CHUNK_BYTES")
	}()

	cfg := Load()

	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.STT.SampleRateHz)
	}
	if !cfg.STT.InterimResults {
		t.Error("expected default interim results on invalid input")
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Errorf("expected default idle timeout on invalid input, got %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.MaxChunkBytes != 1024*1024 {
		t.Errorf("expected default max chunk on invalid input, got %d", cfg.Session.MaxChunkBytes)
	}
}

func TestLoad_KafkaPrincipal_FallsBackToServicePrincipal(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "my-service")
	os.Unsetenv("KAFKA_PRINCIPAL")

	defer os.Unsetenv("SERVICE_PRINCIPAL")

	cfg := Load()

	if cfg.Kafka.Principal != "my-service" {
		t.Errorf("expected Kafka principal to fall back to service principal, got %s", cfg.Kafka.Principal)
	}
}

func TestEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envOrDefaultBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envOrDefaultBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}
