// Package models defines the data structures for transcript and sign-mapping events.
package models

import "time"

// StreamConfig describes the audio format for a streaming session.
// Immutable for the session's streaming lifetime once set.
type StreamConfig struct {
	Encoding       string `json:"encoding"`
	SampleRateHz   int    `json:"sampleRate"`
	LanguageCode   string `json:"languageCode"`
	InterimResults bool   `json:"interimResults"`
}

// TranscriptEvent represents a single recognition result from the STT provider.
// Produced only by the transcription bridge; never mutated after creation.
type TranscriptEvent struct {
	Text       string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	IsFinal    bool    `json:"isFinal"`
	Timestamp  int64   `json:"timestamp"`
}

// Sign is one video clip reference in a mapped sequence.
type Sign struct {
	VideoReference    string `json:"videoReference"`
	DisplayDurationMs int64  `json:"displayDurationMs"`
}

// MappingResult is the outcome of a text-to-sign lookup.
// Signs and Captions are never empty: a no-match lookup yields the
// fallback entry with low confidence instead of an empty result.
type MappingResult struct {
	OriginalText string   `json:"originalText"`
	Signs        []Sign   `json:"mappedSigns"`
	Captions     []string `json:"captions"`
	Confidence   float64  `json:"confidence"`
}

// SignsUpdate is the client-facing payload emitted after a final
// transcript has been mapped to signs.
type SignsUpdate struct {
	OriginalText string   `json:"originalText"`
	Signs        []Sign   `json:"mappedSigns"`
	Captions     []string `json:"captions"`
	Confidence   float64  `json:"confidence"`
	Timestamp    int64    `json:"timestamp"`
}

// ErrorEvent carries a machine-readable kind plus a human-readable message.
type ErrorEvent struct {
	Message string `json:"message"`
	Kind    string `json:"error"`
}

// StreamingStarted acknowledges a successful bridge open.
type StreamingStarted struct {
	SessionID string       `json:"sessionId"`
	Config    StreamConfig `json:"config"`
}

// SessionInfo is a read-only snapshot of one live session.
type SessionInfo struct {
	ID           string       `json:"id"`
	StartTime    time.Time    `json:"startTime"`
	LastActivity time.Time    `json:"lastActivity"`
	DurationMs   int64        `json:"durationMs"`
	State        string       `json:"state"`
	Config       StreamConfig `json:"config"`
}

// SessionStats aggregates live-session information for the stats endpoint.
type SessionStats struct {
	ActiveConnections int           `json:"activeConnections"`
	Connections       []SessionInfo `json:"connections"`
}
