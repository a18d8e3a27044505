// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package metrics defines the Prometheus instruments for Hydro Alert.
//
// All collectors are registered with the default registry via promauto and
// exposed by the API router at GET /metrics. Components update them directly
// or through the Record* helpers.
//
// Families:
//   - api_*: request volume, latency, and admission rejections per policy
//   - rate_limit_*: live bucket count after each sweep
//   - websocket_*: live connections, traffic, errors, and pruned peers
//   - map_*: registered viewports and map_update deliveries per layer
//   - auth_*: authentication failures by kind
//   - events_*: NATS ingest throughput and failures
//   - circuit_breaker_*: account directory breaker state
package metrics
