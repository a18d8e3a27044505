// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package main is the entry point for the Hydro Alert realtime server.
//
// The server pushes flood monitoring events to connected clients over
// WebSockets: map updates filtered by each client's viewport, critical
// report alerts for admins, and broadcast alerts for everyone. Report,
// sensor and evacuation center CRUD runs in other services, which publish
// domain events and account changes on NATS.
//
// # Application Architecture
//
// Components are created once here and passed by reference:
//
//  1. Configuration: Koanf v2 (defaults, optional config.yaml, environment)
//  2. Account directory: memory or BadgerDB behind a circuit breaker
//  3. Authenticator: JWT verification plus account re-resolution
//  4. Admission: sliding-window limiter and HTTP gate
//  5. Connection registry, viewport index, map broadcaster, notifier
//  6. NATS (optional): embedded server and event subscriber
//  7. HTTP server: chi router with socket and admin endpoints
//
// All long-running parts run under a suture supervisor tree.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
// to the shutdown timeout and every live socket is closed with 1001.
//
// # Example Usage
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export NATS_ENABLED=true NATS_EMBEDDED=true
//	./hydroalert
package main
