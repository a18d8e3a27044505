// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of admission rejections",
		},
		[]string{"policy"},
	)

	RateLimitBuckets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_buckets",
			Help: "Number of live sliding-window buckets after the last sweep",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of live WebSocket connections",
		},
	)

	WSAdminConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_admin_connections",
			Help: "Current number of live admin WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // send, read, malformed, throttled, handshake
	)

	WSPrunedConnections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_pruned_connections_total",
			Help: "Connections removed after a failed send",
		},
	)

	// Map Metrics
	MapViewports = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "map_viewports",
			Help: "Current number of registered map viewports",
		},
	)

	MapUpdatesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "map_updates_delivered_total",
			Help: "map_update envelopes handed to the registry, per layer",
		},
		[]string{"layer"},
	)

	// Auth Metrics
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of rejected credentials",
		},
		[]string{"kind"}, // missing, invalid, expired, revoked, unavailable
	)

	// Event Ingest Metrics
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "NATS messages consumed",
		},
		[]string{"subject"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "NATS messages that could not be applied",
		},
		[]string{"reason"}, // decode, dispatch, store
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordConnectionCounts publishes registry sizes.
func RecordConnectionCounts(total, admins int) {
	WSConnections.Set(float64(total))
	WSAdminConnections.Set(float64(admins))
}

// RecordSendFailure counts a failed send and the resulting prune.
func RecordSendFailure() {
	WSErrors.WithLabelValues("send").Inc()
	WSPrunedConnections.Inc()
}
