// Package schema validates client-supplied streaming configuration
// before it reaches a provider bridge.
package schema

import (
	"fmt"
	"regexp"

	"sign-stream-service/internal/models"
)

// Supported audio encodings. Keep in sync with the provider adapters.
var supportedEncodings = map[string]struct{}{
	"LINEAR16":  {},
	"FLAC":      {},
	"MULAW":     {},
	"OGG_OPUS":  {},
	"WEBM_OPUS": {},
}

// languageCodePattern accepts BCP-47 style tags such as "en" or "en-US".
var languageCodePattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,8})*$`)

const (
	minSampleRateHz = 8000
	maxSampleRateHz = 48000
)

// ValidationError reports which field of a stream config was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema: invalid %s: %s", e.Field, e.Message)
}

// ValidateStreamConfig checks a start-streaming config against the
// accepted encodings, sample rate bounds and language tag format.
// Returns a *ValidationError naming the offending field.
func ValidateStreamConfig(cfg models.StreamConfig) error {
	if cfg.Encoding == "" {
		return &ValidationError{Field: "encoding", Message: "must not be empty"}
	}
	if _, ok := supportedEncodings[cfg.Encoding]; !ok {
		return &ValidationError{Field: "encoding", Message: fmt.Sprintf("unsupported encoding %q", cfg.Encoding)}
	}
	if cfg.SampleRateHz < minSampleRateHz || cfg.SampleRateHz > maxSampleRateHz {
		return &ValidationError{
			Field:   "sampleRate",
			Message: fmt.Sprintf("must be between %d and %d", minSampleRateHz, maxSampleRateHz),
		}
	}
	if cfg.LanguageCode == "" {
		return &ValidationError{Field: "languageCode", Message: "must not be empty"}
	}
	if !languageCodePattern.MatchString(cfg.LanguageCode) {
		return &ValidationError{Field: "languageCode", Message: fmt.Sprintf("malformed language tag %q", cfg.LanguageCode)}
	}
	return nil
}
