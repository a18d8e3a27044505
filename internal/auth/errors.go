// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import "errors"

var (
	// ErrMissingCredential indicates no token was supplied.
	ErrMissingCredential = errors.New("authentication token required")

	// ErrInvalidCredential indicates a malformed or badly signed token.
	ErrInvalidCredential = errors.New("invalid authentication token")

	// ErrExpiredCredential indicates the token is past its expiry.
	ErrExpiredCredential = errors.New("authentication token expired")

	// ErrRevoked indicates the subject no longer maps to an active account.
	ErrRevoked = errors.New("account inactive or not found")

	// ErrDirectoryUnavailable indicates account state could not be read.
	ErrDirectoryUnavailable = errors.New("account directory unavailable")

	// ErrAccountNotFound is returned by directories for unknown subjects.
	ErrAccountNotFound = errors.New("account not found")
)

// Kind classifies an authentication failure.
type Kind string

const (
	KindMissing     Kind = "missing"
	KindInvalid     Kind = "invalid"
	KindExpired     Kind = "expired"
	KindRevoked     Kind = "revoked"
	KindUnavailable Kind = "unavailable"
)

// AuthError is returned by Authenticator.Authenticate.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	return e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Reason is the human-readable close reason sent to the client. It never
// includes internal error detail.
func (e *AuthError) Reason() string {
	switch e.Kind {
	case KindMissing:
		return "Authentication token required"
	case KindExpired:
		return "Authentication token expired"
	case KindRevoked:
		return "User not found or inactive"
	case KindUnavailable:
		return "Authentication temporarily unavailable"
	default:
		return "Invalid authentication token"
	}
}

func newAuthError(kind Kind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}
