// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package api provides the HTTP surface of the realtime core using the chi
router.

Routes:

  - GET /health: liveness with connection and viewport counts (never rate limited)
  - GET /metrics: Prometheus exposition
  - GET /ws/notifications?token=: notification socket
  - GET /ws/map?token=&north=&south=&east=&west=: map socket with an initial viewport
  - /api/admin/websocket/*: admin broadcast and introspection endpoints

Middleware order: request ID, panic recovery, CORS, Prometheus
instrumentation, security headers, then the admission gate. The gate runs
before authentication so abusive clients are rejected before any token is
verified.

Socket handshakes always complete the upgrade. Authentication and viewport
failures are reported by closing the socket with 1008 (policy violation)
and a human-readable reason before any message is sent.
*/
package api
