// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package logging provides the process-wide zerolog logger for Hydro Alert.
//
// A single global logger is configured once from main via Init and used
// through the level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("connection_id", id).Msg("websocket connected")
//
// Request-scoped fields (request_id, correlation_id) are attached with Ctx:
//
//	logging.Ctx(r.Context()).Warn().Msg("rate limit exceeded")
//
// Long-lived components derive a child logger once:
//
//	log := logging.WithComponent("registry")
//
// Supervisor events are routed through NewSlogLogger, which adapts zerolog
// to log/slog for sutureslog.
//
// # Environment
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include file:line (default: false)
//
// Credentials (tokens, Authorization headers) must never be passed to the
// logger. Log the subject or connection id instead.
package logging
