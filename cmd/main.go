package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"sign-stream-service/internal/app"
	"sign-stream-service/internal/config"
	apphttp "sign-stream-service/internal/http"
	"sign-stream-service/internal/observability"
	"sign-stream-service/internal/observability/logging"
	"sign-stream-service/internal/transport/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logging.WithComponent("main")

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	application.Start(ctx)

	// Metrics and probe endpoints on their own port.
	obsServer := observability.NewServer(":" + cfg.Service.MetricsPort)
	obsServer.Start()

	// REST surface plus the WebSocket session endpoint.
	router := apphttp.NewRouter(apphttp.Deps{
		Registry:   application.Registry,
		Provider:   application.Provider,
		Invoker:    application.Invoker,
		Dictionary: application.Dictionary,
		WS:         ws.NewServer(application.SessionDeps()),
		Service:    app.ServiceName,
		Version:    app.Version,
	})
	httpServer := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	// gRPC health and reflection for orchestration probes.
	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Msg("grpc listen failed")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(app.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	go func() {
		log.Info().Str("addr", lis.Addr().String()).Msg("grpc server started")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("grpc serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown error")
	}
	grpcServer.GracefulStop()
	application.Shutdown()
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("observability shutdown error")
	}
}
