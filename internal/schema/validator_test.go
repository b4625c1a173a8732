package schema

import (
	"errors"
	"testing"

	"sign-stream-service/internal/models"
)

func validConfig() models.StreamConfig {
	return models.StreamConfig{
		Encoding:       "LINEAR16",
		SampleRateHz:   16000,
		LanguageCode:   "en-US",
		InterimResults: true,
	}
}

func TestValidateStreamConfig_Valid(t *testing.T) {
	for _, enc := range []string{"LINEAR16", "FLAC", "MULAW", "OGG_OPUS", "WEBM_OPUS"} {
		cfg := validConfig()
		cfg.Encoding = enc
		if err := ValidateStreamConfig(cfg); err != nil {
			t.Errorf("encoding %q rejected: %v", enc, err)
		}
	}
}

func TestValidateStreamConfig_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.StreamConfig)
		wantField string
	}{
		{"empty encoding", func(c *models.StreamConfig) { c.Encoding = "" }, "encoding"},
		{"unknown encoding", func(c *models.StreamConfig) { c.Encoding = "AMR_WB" }, "encoding"},
		{"sample rate too low", func(c *models.StreamConfig) { c.SampleRateHz = 4000 }, "sampleRate"},
		{"sample rate too high", func(c *models.StreamConfig) { c.SampleRateHz = 96000 }, "sampleRate"},
		{"zero sample rate", func(c *models.StreamConfig) { c.SampleRateHz = 0 }, "sampleRate"},
		{"empty language", func(c *models.StreamConfig) { c.LanguageCode = "" }, "languageCode"},
		{"malformed language", func(c *models.StreamConfig) { c.LanguageCode = "english (US)" }, "languageCode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateStreamConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateStreamConfig_LanguageTags(t *testing.T) {
	for _, tag := range []string{"en", "en-US", "si-LK", "zh-Hans-CN"} {
		cfg := validConfig()
		cfg.LanguageCode = tag
		if err := ValidateStreamConfig(cfg); err != nil {
			t.Errorf("tag %q rejected: %v", tag, err)
		}
	}
}
