package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-ledger/internal/config"
	"parking-ledger/internal/events"
	"parking-ledger/internal/ledger"
	"parking-ledger/internal/logging"
	"parking-ledger/internal/server"
)

func main() {
	cfg := config.Load()

	mode := flag.String("mode", cfg.Mode, "Mode to run: cli, server, or both")
	port := flag.String("port", cfg.Port, "Port for HTTP server")
	flag.Parse()
	cfg.Mode = *mode
	cfg.Port = *port

	logging.Init(os.Stderr, cfg.IsDevelopment(), cfg.LogLevel)
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := ledger.NewTelemetryProvider(ctx, ledger.TelemetryConfig{
		ServiceName:    cfg.OTelServiceName,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
		ExportInterval: cfg.OTelExportEvery,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	publisher := newPublisher(cfg)
	defer publisher.Close()

	parkingLedger, err := ledger.NewInstrumentedLedger(cfg.EntryFee, cfg.HourlyFee, telemetryProvider, publisher)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ledger")
	}
	session := ledger.NewSession(parkingLedger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch cfg.Mode {
	case "cli":
		runCLI(ctx, cancel, cfg, telemetryProvider, session, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, session, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, telemetryProvider, session, sigChan)
	default:
		log.Fatal().Str("mode", cfg.Mode).Msg("invalid mode, must be cli, server, or both")
	}

	shutdownTelemetry(telemetryProvider)
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.RMQURL == "" {
		return events.NopPublisher{}
	}
	publisher, err := events.NewRMQPublisher(cfg.RMQURL, cfg.CheckInQueueName, cfg.CheckOutQueueName)
	if err != nil {
		logging.Logger().Fatal().Err(err).Msg("failed to set up event publisher")
	}
	return publisher
}

func runCLI(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *ledger.TelemetryProvider, session *ledger.Session, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	shell := ledger.NewInstrumentedShell(telemetryProvider, session, os.Stdin, os.Stdout, cfg.CurrencySymbol)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, session *ledger.Session, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, session, cfg.OTelServiceName, cfg.CurrencySymbol)

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")
		shutdownServer(srv)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger().Error().Err(err).Msg("server error")
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, telemetryProvider *ledger.TelemetryProvider, session *ledger.Session, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, session, cfg.OTelServiceName, cfg.CurrencySymbol)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := ledger.NewInstrumentedShell(telemetryProvider, session, os.Stdin, os.Stdout, cfg.CurrencySymbol)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	case <-cliDone:
		logging.Logger().Info().Msg("CLI exited")
	case <-ctx.Done():
		logging.Logger().Info().Msg("context cancelled")
	}

	shutdownServer(srv)
}

func shutdownServer(srv *server.Server) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("server shutdown error")
	}
}

func shutdownTelemetry(telemetryProvider *ledger.TelemetryProvider) {
	logging.Logger().Info().Msg("shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("error shutting down telemetry")
	}
}
