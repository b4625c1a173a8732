// Package stt defines the interface for Speech-to-Text adapters.
package stt

import (
	"context"
	"errors"

	"sign-stream-service/internal/models"
)

// Bridge error taxonomy. Callers branch on these with errors.Is.
var (
	// ErrProviderUnavailable means no provider credential or endpoint is
	// reachable; a start attempt must fail fast without registering state.
	ErrProviderUnavailable = errors.New("stt: provider unavailable")

	// ErrProviderRejectedConfig means the requested encoding, sample rate
	// or language combination was refused by the provider.
	ErrProviderRejectedConfig = errors.New("stt: provider rejected stream config")

	// ErrBridgeClosed means the underlying channel has already ended.
	// Callers must treat this as "stop sending", not retry.
	ErrBridgeClosed = errors.New("stt: bridge closed")
)

// Callback receives results from the STT provider. Invocations for one
// adapter happen sequentially, in provider emission order.
type Callback interface {
	// OnResult is called for every interim or final transcript.
	OnResult(ev models.TranscriptEvent)

	// OnEnded is called exactly once when the provider closes the
	// stream normally. No further callbacks follow.
	OnEnded()

	// OnError is called when the stream terminates abnormally.
	// No further callbacks follow.
	OnError(err error)
}

// Adapter is one live duplex channel to an STT provider for one session.
type Adapter interface {
	// Start opens the streaming session and begins delivering results
	// to cb. Fails with ErrProviderUnavailable or ErrProviderRejectedConfig.
	Start(ctx context.Context, cfg models.StreamConfig, cb Callback) error

	// SendAudio forwards audio bytes to the provider. Returns
	// ErrBridgeClosed once the channel has ended.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases provider resources.
	// Idempotent; always safe to call.
	Close() error
}

// Provider constructs per-session adapters and serves one-shot requests.
type Provider interface {
	// NewAdapter returns a fresh, unstarted adapter.
	NewAdapter() Adapter

	// Recognize performs a non-streaming transcription of a complete
	// audio payload.
	Recognize(ctx context.Context, cfg models.StreamConfig, audio []byte) (models.TranscriptEvent, error)

	// Name identifies the provider for logs and metrics.
	Name() string
}
