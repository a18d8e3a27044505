// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/hydroalert/internal/admission"
	"github.com/tomtom215/hydroalert/internal/middleware"
)

// corsMaxAge is the preflight cache lifetime in seconds.
const corsMaxAge = 300

// NewRouter builds the chi router. gate may be nil in tests.
func NewRouter(h *Handler, gate *admission.Gate) http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After", middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	if gate != nil {
		r.Use(gate.Middleware)
	}

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ========================
	// Realtime sockets
	// ========================
	r.Route("/ws", func(r chi.Router) {
		r.Get("/notifications", h.NotificationsSocket)
		r.Get("/map", h.MapSocket)
	})

	// ========================
	// Admin Endpoints
	// ========================
	r.Route("/api/admin/websocket", func(r chi.Router) {
		r.Use(h.auth.RequireAdmin)
		r.Post("/broadcast/emergency-alert", h.EmergencyAlert)
		r.Post("/broadcast/system-notification", h.SystemNotification)
		r.Post("/broadcast/report-update", h.ReportUpdateBroadcast)
		r.Get("/connections", h.Connections)
		r.Get("/viewports", h.Viewports)
		r.Post("/test-connection", h.TestConnection)
	})

	return r
}
