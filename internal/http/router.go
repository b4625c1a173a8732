// Package http serves the one-shot REST endpoints and hosts the
// WebSocket upgrade next to them.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"sign-stream-service/internal/observability/logging"
	"sign-stream-service/internal/service/mapping"
	"sign-stream-service/internal/service/session"
	"sign-stream-service/internal/service/stt"
)

// Deps carries the collaborators the REST surface reads from. All of
// them are shared with the streaming path.
type Deps struct {
	Registry   *session.Registry
	Provider   stt.Provider
	Invoker    *mapping.Invoker
	Dictionary *mapping.Dictionary
	WS         http.Handler
	Service    string
	Version    string
}

type server struct {
	deps  Deps
	stats *requestStats
	log   zerolog.Logger
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(deps Deps) http.Handler {
	s := &server{
		deps:  deps,
		stats: newRequestStats(),
		log:   logging.WithComponent("http"),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.collectStats)

	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/transcribe", s.handleTranscribe)
		r.Post("/map", s.handleMap)
		r.Post("/speech-to-signs", s.handleSpeechToSigns)
		r.Get("/dictionary", s.handleDictionary)
		r.Get("/sessions", s.handleSessions)
		r.Get("/health", s.handleHealth)
		if deps.WS != nil {
			r.Get("/ws", deps.WS.ServeHTTP)
		}
	})

	return r
}
