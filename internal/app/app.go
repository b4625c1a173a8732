// Package app wires configuration, the dictionary, the STT provider
// and the session machinery into one process-wide application object.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"sign-stream-service/internal/config"
	"sign-stream-service/internal/events"
	"sign-stream-service/internal/observability/logging"
	"sign-stream-service/internal/service/mapping"
	"sign-stream-service/internal/service/session"
	"sign-stream-service/internal/service/stt"
	"sign-stream-service/internal/service/stt/google"
	"sign-stream-service/internal/service/stt/mock"
)

// ServiceName identifies this process in logs and health payloads.
const ServiceName = "sign-stream-service"

// Version is overridable at build time with -ldflags.
var Version = "dev"

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Registry   *session.Registry
	Provider   stt.Provider
	Invoker    *mapping.Invoker
	Dictionary *mapping.Dictionary
	Publisher  *events.Publisher
	Reaper     *session.Reaper
}

// New constructs the application from the provided configuration,
// loading the dictionary and selecting the STT provider.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	dict, err := loadDictionary(cfg.Mapping.DictionaryPath)
	if err != nil {
		return nil, err
	}
	a.Dictionary = dict
	a.Invoker = mapping.NewInvoker(dict)
	a.Logger.Info().Int("entries", dict.Len()).Msg("dictionary loaded")

	provider, err := selectProvider(ctx, cfg.STT.Provider)
	if err != nil {
		return nil, err
	}
	a.Provider = provider
	a.Logger.Info().Str("provider", provider.Name()).Msg("stt provider ready")

	a.Registry = session.NewRegistry()
	a.Publisher = events.New(&events.Config{
		Enabled:    cfg.Kafka.Enabled,
		Brokers:    cfg.Kafka.Brokers,
		TopicFinal: cfg.Kafka.TopicFinal,
		TopicSigns: cfg.Kafka.TopicSigns,
		Principal:  cfg.Kafka.Principal,
	})
	a.Reaper = session.NewReaper(a.Registry, cfg.Session.IdleTimeout, cfg.Session.ReapInterval)

	return a, nil
}

// SessionDeps builds the dependency set handed to every new session
// handler.
func (a *Application) SessionDeps() session.Deps {
	return session.Deps{
		Registry:      a.Registry,
		Provider:      a.Provider,
		Invoker:       a.Invoker,
		Publisher:     a.Publisher,
		MaxChunkBytes: a.Cfg.Session.MaxChunkBytes,
		SendBuffer:    a.Cfg.Session.SendBuffer,
		OpenTimeout:   a.Cfg.STT.OpenTimeout,
	}
}

// Start stamps the startup time and launches the idle reaper. The
// reaper stops when ctx is cancelled.
func (a *Application) Start(ctx context.Context) {
	a.StartupTime = time.Now().UTC()
	go a.Reaper.Run(ctx)
	a.Logger.Info().Time("startupTime", a.StartupTime).Msg("service starting")
}

// Shutdown performs a best-effort cleanup before process exit: stops
// every live session through the normal teardown path and closes the
// publisher.
func (a *Application) Shutdown() {
	for _, info := range a.Registry.Snapshot().Connections {
		if h, ok := a.Registry.Get(info.ID); ok {
			h.Stop()
		}
	}
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("publisher close error")
	}
	a.Logger.Info().Msg("service shut down")
}

func loadDictionary(path string) (*mapping.Dictionary, error) {
	if path == "" {
		return mapping.Default(), nil
	}
	dict, err := mapping.Load(path)
	if err != nil {
		return nil, fmt.Errorf("app: load dictionary %s: %w", path, err)
	}
	return dict, nil
}

func selectProvider(ctx context.Context, name string) (stt.Provider, error) {
	switch name {
	case "google":
		return google.NewProvider(ctx)
	case "mock", "":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("app: unknown stt provider %q", name)
	}
}
