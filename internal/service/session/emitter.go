package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Client-facing event names.
const (
	EventStreamingStarted = "streaming-started"
	EventTranscriptUpdate = "transcript-update"
	EventSignsUpdate      = "signs-update"
	EventMappingError     = "mapping-error"
	EventStreamingError   = "streaming-error"
	EventStreamingEnded   = "streaming-ended"
	EventStreamingStopped = "streaming-stopped"
)

// Event is one typed outbound event for a session's client.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// emitter serializes all outbound events for one session onto a single
// ordered channel. Events emitted after Close are dropped silently, so
// late mapping results never reach a closed session's client.
type emitter struct {
	mu     sync.Mutex
	closed bool
	ch     chan Event
	log    zerolog.Logger
}

func newEmitter(buffer int, log zerolog.Logger) *emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &emitter{
		ch:  make(chan Event, buffer),
		log: log,
	}
}

// Emit enqueues one event, preserving call order. A full buffer drops
// the event rather than blocking the bridge receive loop.
func (e *emitter) Emit(eventType string, payload any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	select {
	case e.ch <- Event{Type: eventType, Payload: payload}:
		return true
	default:
		e.log.Warn().Str("event", eventType).Msg("outbound buffer full, dropping event")
		return false
	}
}

// Close stops delivery and closes the channel. Idempotent.
func (e *emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.ch)
}

// Events exposes the ordered outbound channel. Closed when the session
// is fully torn down.
func (e *emitter) Events() <-chan Event {
	return e.ch
}
