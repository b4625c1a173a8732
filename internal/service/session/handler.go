package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sign-stream-service/internal/events"
	"sign-stream-service/internal/models"
	"sign-stream-service/internal/observability/logging"
	"sign-stream-service/internal/observability/metrics"
	"sign-stream-service/internal/service/mapping"
	"sign-stream-service/internal/service/stt"
)

// Machine-readable error kinds carried on client-facing error events.
const (
	KindNoActiveSession     = "no-active-session"
	KindInvalidState        = "invalid-state"
	KindInvalidConfig       = "invalid-config"
	KindProviderUnavailable = "provider-unavailable"
	KindProviderError       = "provider-error"
	KindBridgeClosed        = "bridge-closed"
	KindPayloadTooLarge     = "payload-too-large"
	KindBadPayload          = "bad-payload"
	KindMappingFailed       = "mapping-failed"
	KindIdleTimeout         = "idle-timeout"
)

// Deps wires a Handler to its collaborators.
type Deps struct {
	Registry      *Registry
	Provider      stt.Provider
	Invoker       *mapping.Invoker
	Publisher     *events.Publisher
	Metrics       *metrics.Metrics
	MaxChunkBytes int64
	SendBuffer    int
	OpenTimeout   time.Duration
}

// Handler is the per-connection protocol state machine. It interprets
// client commands, drives the transcription bridge and mapping invoker,
// and emits ordered events for the client.
//
// It implements stt.Callback: the bridge's receive loop is the only
// producer of provider callbacks, so provider emission order carries
// straight through to the outbound channel.
type Handler struct {
	id   string
	deps Deps
	log  zerolog.Logger
	out  *emitter

	mu      sync.Mutex
	state   State
	session *Session
	adapter stt.Adapter

	// mappings tracks in-flight text-to-sign lookups so a normal
	// provider stream end is reported after their results.
	mappings sync.WaitGroup
}

// NewHandler creates an Idle handler with a fresh session id.
func NewHandler(deps Deps) *Handler {
	id := uuid.NewString()
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultMetrics
	}
	log := logging.WithStream(id, deps.Provider.Name())
	return &Handler{
		id:   id,
		deps: deps,
		log:  log,
		out:  newEmitter(deps.SendBuffer, log),
	}
}

// ID returns the session id assigned at connect time.
func (h *Handler) ID() string { return h.id }

// Events is the single ordered outbound channel for this session's
// client. Closed when the session is fully torn down.
func (h *Handler) Events() <-chan Event {
	return h.out.Events()
}

// State returns the current lifecycle state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Info returns a stats snapshot, or false if no stream was started.
func (h *Handler) Info() (models.SessionInfo, bool) {
	h.mu.Lock()
	sess := h.session
	state := h.state
	h.mu.Unlock()
	if sess == nil {
		return models.SessionInfo{}, false
	}
	return models.SessionInfo{
		ID:           sess.ID,
		StartTime:    sess.StartedAt,
		LastActivity: sess.LastActivity(),
		DurationMs:   time.Since(sess.StartedAt).Milliseconds(),
		State:        state.String(),
		Config:       sess.Config,
	}, true
}

// Start handles the start-streaming command: opens a bridge, registers
// the session, and acknowledges with streaming-started. On bridge-open
// failure the handler stays Idle and no session is registered.
func (h *Handler) Start(ctx context.Context, cfg models.StreamConfig) {
	h.mu.Lock()
	if h.state != StateIdle {
		state := h.state
		h.mu.Unlock()
		if state == StateStreaming {
			h.emitError(EventStreamingError, KindInvalidState, "streaming already active for this session")
		} else {
			h.emitError(EventStreamingError, KindInvalidState, "session is closing")
		}
		return
	}
	// Claim the slot before the provider round-trip so a racing second
	// start cannot open a second bridge.
	h.state = StateClosing
	h.mu.Unlock()

	// The bridge open is bounded: a hung provider fails the start
	// instead of blocking the session forever.
	openCtx := ctx
	if h.deps.OpenTimeout > 0 {
		var cancel context.CancelFunc
		openCtx, cancel = context.WithTimeout(ctx, h.deps.OpenTimeout)
		defer cancel()
	}

	adapter := h.deps.Provider.NewAdapter()
	if err := adapter.Start(openCtx, cfg, h); err != nil {
		_ = adapter.Close()
		h.mu.Lock()
		h.state = StateIdle
		h.mu.Unlock()
		h.deps.Metrics.RecordSTTError(h.deps.Provider.Name(), "open")
		h.log.Warn().Err(err).Msg("bridge open failed")
		h.emitError(EventStreamingError, startErrorKind(err), err.Error())
		return
	}

	sess := NewSession(h.id, cfg)
	h.mu.Lock()
	h.adapter = adapter
	h.session = sess
	h.state = StateStreaming
	h.mu.Unlock()

	if err := h.deps.Registry.Add(h); err != nil {
		h.mu.Lock()
		h.adapter = nil
		h.session = nil
		h.state = StateIdle
		h.mu.Unlock()
		_ = adapter.Close()
		h.emitError(EventStreamingError, KindInvalidState, err.Error())
		return
	}

	h.deps.Metrics.RecordSessionStart()
	h.log.Info().
		Str("encoding", cfg.Encoding).
		Int("sampleRate", cfg.SampleRateHz).
		Str("language", cfg.LanguageCode).
		Msg("streaming session started")
	h.emit(EventStreamingStarted, models.StreamingStarted{SessionID: h.id, Config: cfg})
}

// Audio handles one audio chunk. Resource violations reject the chunk
// only; the session keeps streaming. A closed bridge tears the session
// down.
func (h *Handler) Audio(ctx context.Context, chunk []byte) {
	h.mu.Lock()
	if h.state != StateStreaming {
		h.mu.Unlock()
		h.emitError(EventStreamingError, KindNoActiveSession, "no active session, send start-streaming first")
		return
	}
	adapter := h.adapter
	sess := h.session
	h.mu.Unlock()

	sess.Touch()

	if h.deps.MaxChunkBytes > 0 && int64(len(chunk)) > h.deps.MaxChunkBytes {
		h.deps.Metrics.RecordAudioRejected("payload_too_large")
		h.emitError(EventStreamingError, KindPayloadTooLarge, "audio chunk exceeds size limit")
		return
	}

	h.deps.Metrics.RecordAudioReceived(len(chunk))

	if err := adapter.SendAudio(ctx, chunk); err != nil {
		h.log.Warn().Err(err).Msg("audio forward failed, bridge ended")
		h.emitError(EventStreamingError, KindBridgeClosed, "transcription stream has ended")
		h.shutdown()
	}
}

// RejectMessage reports a malformed client message without changing
// session state.
func (h *Handler) RejectMessage(kind, message string) {
	h.emitError(EventStreamingError, kind, message)
}

// Stop handles the client stop-streaming command.
func (h *Handler) Stop() {
	h.shutdown()
}

// Disconnect handles a transport-level disconnect; treated identically
// to stop regardless of current state.
func (h *Handler) Disconnect() {
	h.shutdown()
}

// Expire force-closes an idle session, same cleanup path as stop.
func (h *Handler) Expire() {
	h.deps.Metrics.RecordSessionReaped()
	h.log.Info().Msg("session expired after idle timeout")
	h.emitError(EventStreamingError, KindIdleTimeout, "session closed after idle timeout")
	h.shutdown()
}

// OnResult implements stt.Callback. Interim results are republished
// immediately; final results additionally trigger an asynchronous
// mapping lookup so audio forwarding is never blocked behind it.
func (h *Handler) OnResult(ev models.TranscriptEvent) {
	h.mu.Lock()
	streaming := h.state == StateStreaming
	h.mu.Unlock()
	if !streaming {
		return
	}

	h.deps.Metrics.RecordTranscript(ev.IsFinal)
	h.emit(EventTranscriptUpdate, ev)

	if ev.IsFinal && strings.TrimSpace(ev.Text) != "" {
		h.publishFinal(ev)
		h.mappings.Add(1)
		go h.mapFinal(ev.Text)
	}
}

// OnEnded implements stt.Callback: the provider closed the stream
// normally. In-flight mappings finish first so their signs-update
// events precede streaming-ended.
func (h *Handler) OnEnded() {
	h.mappings.Wait()

	h.mu.Lock()
	streaming := h.state == StateStreaming
	h.mu.Unlock()
	if !streaming {
		return
	}

	h.emit(EventStreamingEnded, nil)
	h.shutdown()
}

// OnError implements stt.Callback: the provider stream terminated
// abnormally. Only this session is torn down.
func (h *Handler) OnError(err error) {
	h.mu.Lock()
	streaming := h.state == StateStreaming
	h.mu.Unlock()
	if !streaming {
		return
	}

	h.deps.Metrics.RecordSTTError(h.deps.Provider.Name(), "stream")
	h.log.Warn().Err(err).Msg("provider stream error")
	h.emitError(EventStreamingError, KindProviderError, err.Error())
	h.shutdown()
}

// mapFinal runs the text-to-sign lookup for one finalized transcript.
// Mapping failures are recoverable per-utterance: the session keeps
// streaming. A result arriving after teardown is dropped silently.
func (h *Handler) mapFinal(text string) {
	defer h.mappings.Done()

	start := time.Now()
	res, err := h.deps.Invoker.Map(text)
	fallback := err == nil && len(res.Captions) == 1 && res.Captions[0] == mapping.FallbackGloss
	h.deps.Metrics.RecordMapping(err, fallback, time.Since(start).Seconds())

	// A lookup finishing after teardown is dropped, error or not.
	h.mu.Lock()
	streaming := h.state == StateStreaming
	h.mu.Unlock()
	if !streaming {
		return
	}

	if err != nil {
		h.log.Warn().Err(err).Str("text", text).Msg("mapping lookup failed")
		h.emitError(EventMappingError, KindMappingFailed, err.Error())
		return
	}

	now := time.Now().UnixMilli()
	h.emit(EventSignsUpdate, models.SignsUpdate{
		OriginalText: res.OriginalText,
		Signs:        res.Signs,
		Captions:     res.Captions,
		Confidence:   res.Confidence,
		Timestamp:    now,
	})
	h.publishSigns(res, now)
}

// shutdown drives Closing → Closed: closes the bridge exactly once,
// removes the registry entry, emits streaming-stopped and seals the
// outbound channel. Safe to call from any state and from concurrent
// paths (client stop, disconnect, provider error, reaper).
func (h *Handler) shutdown() {
	h.mu.Lock()
	if h.state == StateClosing || h.state == StateClosed {
		h.mu.Unlock()
		return
	}
	h.state = StateClosing
	adapter := h.adapter
	h.adapter = nil
	sess := h.session
	h.mu.Unlock()

	if adapter != nil {
		if err := adapter.Close(); err != nil {
			h.log.Warn().Err(err).Msg("bridge close error")
		}
	}
	if sess != nil {
		h.deps.Registry.Remove(sess.ID)
		h.deps.Metrics.RecordSessionEnd(time.Since(sess.StartedAt).Seconds())
		h.log.Info().
			Dur("duration", time.Since(sess.StartedAt)).
			Msg("streaming session stopped")
	}

	h.mu.Lock()
	h.state = StateClosed
	h.mu.Unlock()

	h.emit(EventStreamingStopped, nil)
	h.out.Close()
}

func (h *Handler) emit(eventType string, payload any) {
	h.out.Emit(eventType, payload)
}

func (h *Handler) emitError(eventType, kind, message string) {
	h.out.Emit(eventType, models.ErrorEvent{Message: message, Kind: kind})
}

func (h *Handler) publishFinal(ev models.TranscriptEvent) {
	if h.deps.Publisher == nil {
		return
	}
	rec := models.TranscriptFinalEvent{
		EventType:  "session.transcript.final",
		SessionID:  h.id,
		Text:       ev.Text,
		Confidence: ev.Confidence,
		Timestamp:  ev.Timestamp,
	}
	if err := h.deps.Publisher.PublishFinal(context.Background(), h.id, rec); err != nil {
		h.log.Warn().Err(err).Msg("final transcript publish failed")
	}
}

func (h *Handler) publishSigns(res models.MappingResult, timestamp int64) {
	if h.deps.Publisher == nil {
		return
	}
	rec := models.SignsMappedEvent{
		EventType:    "session.signs.mapped",
		SessionID:    h.id,
		OriginalText: res.OriginalText,
		Signs:        res.Signs,
		Captions:     res.Captions,
		Confidence:   res.Confidence,
		Timestamp:    timestamp,
	}
	if err := h.deps.Publisher.PublishSigns(context.Background(), h.id, rec); err != nil {
		h.log.Warn().Err(err).Msg("signs publish failed")
	}
}

// startErrorKind maps bridge-open failures onto client-facing kinds.
func startErrorKind(err error) string {
	switch {
	case errors.Is(err, stt.ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, stt.ErrProviderRejectedConfig):
		return KindInvalidConfig
	default:
		return KindProviderError
	}
}
