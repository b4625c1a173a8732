package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"sign-stream-service/internal/observability/logging"
)

// Reaper periodically closes sessions with no client activity within
// the idle timeout. Expired sessions go through the same cleanup path
// as a client-initiated stop.
type Reaper struct {
	registry *Registry
	timeout  time.Duration
	interval time.Duration
	log      zerolog.Logger
}

func NewReaper(registry *Registry, timeout, interval time.Duration) *Reaper {
	return &Reaper{
		registry: registry,
		timeout:  timeout,
		interval: interval,
		log:      logging.WithComponent("session-reaper"),
	}
}

// Run blocks until ctx is cancelled, sweeping on every tick.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().
		Dur("timeout", r.timeout).
		Dur("interval", r.interval).
		Msg("session reaper started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("session reaper stopped")
			return
		case now := <-ticker.C:
			r.sweep(now)
		}
	}
}

func (r *Reaper) sweep(now time.Time) {
	stale := r.registry.ListStale(now, r.timeout)
	for _, h := range stale {
		r.log.Info().Str("sessionId", h.ID()).Msg("reaping idle session")
		h.Expire()
	}
}
