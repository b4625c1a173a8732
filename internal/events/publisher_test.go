package events

import (
	"context"
	"testing"

	"sign-stream-service/internal/models"
)

func TestNew_NilConfig_LogOnlyMode(t *testing.T) {
	p := New(nil)
	if p.enabled {
		t.Error("nil config should produce a disabled publisher")
	}
	if err := p.PublishFinal(context.Background(), "s-1", models.TranscriptFinalEvent{Text: "hi"}); err != nil {
		t.Errorf("disabled publisher should not error: %v", err)
	}
}

func TestNew_DisabledConfig_LogOnlyMode(t *testing.T) {
	p := New(&Config{Enabled: false, TopicFinal: "f", TopicSigns: "s"})
	if p.enabled {
		t.Error("disabled config should produce a disabled publisher")
	}
	if err := p.PublishSigns(context.Background(), "s-1", models.SignsMappedEvent{OriginalText: "hi"}); err != nil {
		t.Errorf("disabled publisher should not error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("closing a disabled publisher should not error: %v", err)
	}
}

func TestNew_EnabledWithoutBrokers_LogOnlyMode(t *testing.T) {
	p := New(&Config{Enabled: true})
	if p.enabled {
		t.Error("enabled config without brokers should fall back to log-only mode")
	}
}
