package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"sign-stream-service/internal/models"
	"sign-stream-service/internal/schema"
	"sign-stream-service/internal/service/mapping"
)

type transcribeRequest struct {
	AudioContent string              `json:"audioContent"`
	Config       models.StreamConfig `json:"config"`
}

type transcribeResponse struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type mapRequest struct {
	Text string `json:"text"`
}

type speechToSignsResponse struct {
	Transcript       string        `json:"transcript"`
	TranscriptScore  float64       `json:"transcriptConfidence"`
	Signs            []models.Sign `json:"mappedSigns"`
	Captions         []string      `json:"captions"`
	MappingScore     float64       `json:"mappingConfidence"`
	ProcessingTimeMs int64         `json:"processingTimeMs"`
}

func (s *server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	req, audio, ok := s.decodeAudioRequest(w, r)
	if !ok {
		return
	}

	ev, err := s.deps.Provider.Recognize(r.Context(), req.Config, audio)
	if err != nil {
		s.log.Warn().Err(err).Msg("one-shot transcription failed")
		s.writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	s.writeJSON(w, http.StatusOK, transcribeResponse{
		Transcript: ev.Text,
		Confidence: ev.Confidence,
	})
}

func (s *server) handleMap(w http.ResponseWriter, r *http.Request) {
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Blank text is a valid lookup: the invoker answers with the
	// fallback entry, same as the streaming path.
	res, err := s.deps.Invoker.Map(req.Text)
	if err != nil {
		if errors.Is(err, mapping.ErrMalformedInput) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, "mapping failed")
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// handleSpeechToSigns chains one-shot transcription and mapping for
// clients that do not hold a streaming session.
func (s *server) handleSpeechToSigns(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, audio, ok := s.decodeAudioRequest(w, r)
	if !ok {
		return
	}

	ev, err := s.deps.Provider.Recognize(r.Context(), req.Config, audio)
	if err != nil {
		s.log.Warn().Err(err).Msg("one-shot transcription failed")
		s.writeError(w, http.StatusBadGateway, "transcription failed")
		return
	}

	res, err := s.deps.Invoker.Map(ev.Text)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "mapping failed")
		return
	}

	s.writeJSON(w, http.StatusOK, speechToSignsResponse{
		Transcript:       ev.Text,
		TranscriptScore:  ev.Confidence,
		Signs:            res.Signs,
		Captions:         res.Captions,
		MappingScore:     res.Confidence,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

func (s *server) handleDictionary(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"size":       s.deps.Dictionary.Len(),
		"vocabulary": s.deps.Dictionary.Glosses(),
	})
}

func (s *server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.deps.Registry.Snapshot())
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.stats.snapshot()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    snap.Uptime.String(),
		"service": map[string]any{
			"name":    s.deps.Service,
			"version": s.deps.Version,
		},
		"requests": map[string]any{
			"total":        snap.Requests,
			"errors":       snap.Errors,
			"successRate":  snap.SuccessRate,
			"avgLatencyMs": snap.AvgLatencyMs,
		},
		"sessions": map[string]any{
			"active": s.deps.Registry.Len(),
		},
		"memory": map[string]any{
			"allocBytes": mem.Alloc,
			"sysBytes":   mem.Sys,
			"numGC":      mem.NumGC,
			"goroutines": runtime.NumGoroutine(),
		},
	})
}

// decodeAudioRequest parses and validates the shared shape of the
// audio-carrying one-shot endpoints. Writes the error response itself.
func (s *server) decodeAudioRequest(w http.ResponseWriter, r *http.Request) (transcribeRequest, []byte, bool) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return req, nil, false
	}
	if err := schema.ValidateStreamConfig(req.Config); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return req, nil, false
	}
	if req.AudioContent == "" {
		s.writeError(w, http.StatusBadRequest, "audioContent must not be empty")
		return req, nil, false
	}
	audio, err := base64.StdEncoding.DecodeString(req.AudioContent)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "audioContent is not valid base64")
		return req, nil, false
	}
	return req, audio, true
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("response encode failed")
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
