// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package middleware provides HTTP middleware shared by every route.

Key Components:

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the logging context
  - PrometheusMetrics: request count, latency and in-flight instrumentation,
    labelled by chi route pattern
  - SecurityHeaders: nosniff, frame denial, referrer policy and HSTS over TLS

All middleware use the func(http.Handler) http.Handler shape so they can be
passed to chi's Use. The metrics response writer supports http.Hijacker so
WebSocket upgrades pass through it.
*/
package middleware
