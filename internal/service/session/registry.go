package session

import (
	"errors"
	"sync"
	"time"

	"sign-stream-service/internal/models"
)

// ErrDuplicateSession is returned when registering an id that is
// already present.
var ErrDuplicateSession = errors.New("session: duplicate session id")

// Registry is the authoritative set of live sessions keyed by session
// id. Safe for concurrent use by session handlers and the reaper.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]*Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]*Handler),
	}
}

// Add registers a handler under its session id. Fails with
// ErrDuplicateSession if the id is already present.
func (r *Registry) Add(h *Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[h.ID()]; exists {
		return ErrDuplicateSession
	}
	r.handlers[h.ID()] = h
	return nil
}

// Get looks up a handler by session id.
func (r *Registry) Get(id string) (*Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[id]
	return h, ok
}

// Remove deletes a session id. Idempotent; removing an absent id is a
// no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// ListStale returns handlers whose last client activity is older than
// timeout at the given instant.
func (r *Registry) ListStale(now time.Time, timeout time.Duration) []*Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []*Handler
	for _, h := range r.handlers {
		if info, ok := h.Info(); ok && now.Sub(info.LastActivity) > timeout {
			stale = append(stale, h)
		}
	}
	return stale
}

// Snapshot returns read-only stats for every registered session.
func (r *Registry) Snapshot() models.SessionStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := models.SessionStats{
		ActiveConnections: len(r.handlers),
		Connections:       make([]models.SessionInfo, 0, len(r.handlers)),
	}
	for _, h := range r.handlers {
		if info, ok := h.Info(); ok {
			stats.Connections = append(stats.Connections, info)
		}
	}
	return stats
}
