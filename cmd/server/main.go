// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/hydroalert/internal/admission"
	"github.com/tomtom215/hydroalert/internal/api"
	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/config"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/mapevents"
	"github.com/tomtom215/hydroalert/internal/notify"
	"github.com/tomtom215/hydroalert/internal/supervisor"
	"github.com/tomtom215/hydroalert/internal/supervisor/services"
	ws "github.com/tomtom215/hydroalert/internal/websocket"
)

// shutdownTimeout bounds the HTTP drain on shutdown.
const shutdownTimeout = 10 * time.Second

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("account_store", cfg.Accounts.Store).
		Bool("events_enabled", cfg.Events.Enabled).
		Msg("Starting Hydro Alert realtime server")

	if cfg.Security.TrustForwardedFor {
		logging.Warn().Msg("Rate limit client keys trust X-Forwarded-For; run behind a proxy that overwrites it")
	}

	// Authentication
	accounts, err := openAccountStore(cfg.Accounts)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open account directory")
	}
	defer func() {
		if err := accounts.close(); err != nil {
			logging.Error().Err(err).Msg("Error closing account directory")
		}
	}()

	tokens, err := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}
	authenticator := auth.NewAuthenticator(tokens, accounts.directory)

	// Admission
	limiter := admission.NewLimiter(
		admission.WithSweepInterval(cfg.RateLimit.SweepInterval),
		admission.WithRetention(cfg.RateLimit.Retention),
	)
	gate := admission.NewGate(limiter, admission.DefaultClassifier(),
		admission.WithIdentity(authenticator.RequestSubject),
		admission.WithTrustForwardedFor(cfg.Security.TrustForwardedFor),
		admission.WithDisabled(cfg.Security.RateLimitDisabled),
	)
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	// Realtime core
	registry := ws.NewRegistry()
	broadcaster := mapevents.NewBroadcaster(registry, mapevents.NewIndex(),
		mapevents.WithRadius(cfg.Realtime.DefaultRadiusKM))
	notifier := notify.NewNotifier(registry, broadcaster)

	// Event ingest
	ingest, err := initEvents(cfg.Events, notifier, accounts.directory)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event ingest")
	}
	if ingest != nil {
		defer ingest.Close()
	}

	// HTTP
	handler := api.NewHandler(cfg, authenticator, registry, broadcaster, notifier)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, gate),
		ReadHeaderTimeout: cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === BUILD SUPERVISOR TREE ===

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// State layer
	tree.AddStateService(registry)
	tree.AddStateService(limiter)
	if accounts.gc != nil {
		tree.AddStateService(accounts.gc)
	}

	// Messaging layer
	if ingest != nil {
		tree.AddMessagingService(ingest.subscriber)
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	// The tree returns once ctx is canceled or it fails permanently.
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Application stopped gracefully")
}
