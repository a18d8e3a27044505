// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package auth turns an externally issued credential into an Identity.
//
// Authentication is two steps. The TokenManager checks the HS256 signature
// and expiry of the JWT. The Authenticator then re-resolves the token
// subject against the AccountDirectory, so an account that was deactivated
// or demoted after the token was issued is refused with ErrRevoked, and the
// Identity carries the account's current role rather than the claim.
//
// Directories:
//   - MemoryDirectory: process-local map, used in tests and development
//   - BadgerDirectory: persistent store, fed by the account update stream
//   - BreakerDirectory: wraps another directory with a circuit breaker so a
//     failing store refuses handshakes fast with ErrDirectoryUnavailable
//
// Nothing is cached between calls.
package auth
