package http

import (
	"net/http"
	"sync"
	"time"
)

// requestStats aggregates the counters reported by the health endpoint.
type requestStats struct {
	mu           sync.Mutex
	started      time.Time
	requests     int64
	errors       int64
	totalLatency time.Duration
}

func newRequestStats() *requestStats {
	return &requestStats{started: time.Now()}
}

func (s *requestStats) record(status int, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.totalLatency += latency
	if status >= 400 {
		s.errors++
	}
}

type statsSnapshot struct {
	Uptime       time.Duration
	Requests     int64
	Errors       int64
	SuccessRate  float64
	AvgLatencyMs float64
}

func (s *requestStats) snapshot() statsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := statsSnapshot{
		Uptime:      time.Since(s.started),
		Requests:    s.requests,
		Errors:      s.errors,
		SuccessRate: 1.0,
	}
	if s.requests > 0 {
		snap.SuccessRate = float64(s.requests-s.errors) / float64(s.requests)
		snap.AvgLatencyMs = s.totalLatency.Seconds() * 1000 / float64(s.requests)
	}
	return snap
}

// statusWriter captures the response code for stats collection.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *server) collectStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The WebSocket upgrade hijacks the connection; wrapping its
		// writer would break the upgrade handshake.
		if r.URL.Path == "/v1/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.stats.record(sw.status, time.Since(start))
	})
}
