// Package session implements the streaming session protocol: the
// registry of live sessions, the per-connection protocol handler state
// machine, and the idle reaper.
package session

import (
	"fmt"
	"sync"
	"time"

	"sign-stream-service/internal/models"
)

// State is the lifecycle state of a streaming session.
type State int

const (
	// StateIdle - connected, no stream started.
	StateIdle State = iota
	// StateStreaming - bridge open, audio flowing.
	StateStreaming
	// StateClosing - teardown in progress.
	StateClosing
	// StateClosed - terminal.
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStreaming:
		return "STREAMING"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// Session holds the immutable identity and config of one live stream
// plus its activity timestamp. The owning Handler mutates lastActivity
// on every inbound client message.
type Session struct {
	ID        string
	Config    models.StreamConfig
	StartedAt time.Time

	mu           sync.RWMutex
	lastActivity time.Time
}

// NewSession creates a session stamped with the current time.
func NewSession(id string, cfg models.StreamConfig) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Config:       cfg,
		StartedAt:    now,
		lastActivity: now,
	}
}

// Touch records inbound client activity.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the most recent inbound client message.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}
