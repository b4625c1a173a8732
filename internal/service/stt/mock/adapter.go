// Package mock provides a scripted STT provider for running without cloud
// credentials. It simulates progressive interim transcripts followed by
// exactly one final transcript per utterance.
package mock

import (
	"context"
	"sync"
	"time"

	"sign-stream-service/internal/models"
	"sign-stream-service/internal/service/stt"
)

// SimulatedUtterance is one scripted utterance.
type SimulatedUtterance struct {
	Interims   []string
	Final      string
	Confidence float64
}

// DefaultUtterances provides sample utterances for simulation.
var DefaultUtterances = []SimulatedUtterance{
	{
		Interims:   []string{"thank", "thank you"},
		Final:      "thank you",
		Confidence: 0.97,
	},
	{
		Interims:   []string{"hello", "hello how are", "hello how are you"},
		Final:      "hello how are you",
		Confidence: 0.93,
	},
	{
		Interims:   []string{"please", "please help"},
		Final:      "please help me",
		Confidence: 0.91,
	},
	{
		Interims:   []string{"good", "good morning"},
		Final:      "good morning",
		Confidence: 0.96,
	},
}

// Provider implements stt.Provider with scripted responses.
type Provider struct {
	mu      sync.Mutex
	counter int

	// Delay between receiving audio and emitting a result. Zero in tests.
	Latency time.Duration
}

// NewProvider creates a mock provider cycling through DefaultUtterances.
func NewProvider() *Provider {
	return &Provider{Latency: 50 * time.Millisecond}
}

// Name implements stt.Provider.
func (p *Provider) Name() string { return "mock" }

// NewAdapter returns an adapter scripted with the next utterance.
func (p *Provider) NewAdapter() stt.Adapter {
	p.mu.Lock()
	utt := DefaultUtterances[p.counter%len(DefaultUtterances)]
	p.counter++
	latency := p.Latency
	p.mu.Unlock()

	return &Adapter{utterance: utt, latency: latency}
}

// Recognize returns the next scripted final transcript.
func (p *Provider) Recognize(_ context.Context, _ models.StreamConfig, _ []byte) (models.TranscriptEvent, error) {
	p.mu.Lock()
	utt := DefaultUtterances[p.counter%len(DefaultUtterances)]
	p.counter++
	p.mu.Unlock()

	return models.TranscriptEvent{
		Text:       utt.Final,
		Confidence: utt.Confidence,
		IsFinal:    true,
		Timestamp:  time.Now().UnixMilli(),
	}, nil
}

// Adapter implements stt.Adapter with one scripted utterance.
// Each audio frame advances the script: one interim per frame, then the
// final once interims are exhausted, then a normal stream end.
type Adapter struct {
	utterance SimulatedUtterance
	latency   time.Duration

	mu           sync.Mutex
	cb           stt.Callback
	interimIndex int
	finalSent    bool
	closed       bool
	pending      sync.WaitGroup
	// pendingDone chains scheduled deliveries so callback order
	// matches script order even with nonzero latency.
	pendingDone chan struct{}
}

// Start begins the scripted session.
func (a *Adapter) Start(_ context.Context, cfg models.StreamConfig, cb stt.Callback) error {
	if cfg.SampleRateHz <= 0 || cfg.LanguageCode == "" {
		return stt.ErrProviderRejectedConfig
	}
	a.mu.Lock()
	a.cb = cb
	a.mu.Unlock()
	return nil
}

// SendAudio advances the script by one step.
func (a *Adapter) SendAudio(_ context.Context, _ []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return stt.ErrBridgeClosed
	}
	if a.cb == nil {
		return stt.ErrBridgeClosed
	}

	if a.interimIndex < len(a.utterance.Interims) {
		text := a.utterance.Interims[a.interimIndex]
		a.interimIndex++
		a.emitLater(func(cb stt.Callback) {
			cb.OnResult(models.TranscriptEvent{
				Text:      text,
				IsFinal:   false,
				Timestamp: time.Now().UnixMilli(),
			})
		})
		return nil
	}

	if !a.finalSent {
		a.finalSent = true
		utt := a.utterance
		a.emitLater(func(cb stt.Callback) {
			cb.OnResult(models.TranscriptEvent{
				Text:       utt.Final,
				Confidence: utt.Confidence,
				IsFinal:    true,
				Timestamp:  time.Now().UnixMilli(),
			})
			cb.OnEnded()
		})
	}
	return nil
}

// emitLater schedules one callback delivery. Deliveries run on a single
// goroutine chain so order matches script order. Caller holds a.mu.
func (a *Adapter) emitLater(fn func(stt.Callback)) {
	cb := a.cb
	latency := a.latency
	a.pending.Add(1)
	prev := a.pendingDone
	done := make(chan struct{})
	a.pendingDone = done

	go func() {
		defer a.pending.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		if latency > 0 {
			time.Sleep(latency)
		}
		a.mu.Lock()
		closed := a.closed
		a.mu.Unlock()
		if !closed {
			fn(cb)
		}
	}()
}

// Close ends the scripted session. Idempotent.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	return nil
}
