package models

// TranscriptFinalEvent is the downstream fan-out record for a finalized
// transcript segment.
type TranscriptFinalEvent struct {
	EventType  string  `json:"eventType"`
	SessionID  string  `json:"sessionId"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Timestamp  int64   `json:"timestamp"`
}

// SignsMappedEvent is the downstream fan-out record for a completed
// text-to-sign mapping.
type SignsMappedEvent struct {
	EventType    string   `json:"eventType"`
	SessionID    string   `json:"sessionId"`
	OriginalText string   `json:"originalText"`
	Signs        []Sign   `json:"mappedSigns"`
	Captions     []string `json:"captions"`
	Confidence   float64  `json:"confidence"`
	Timestamp    int64    `json:"timestamp"`
}
