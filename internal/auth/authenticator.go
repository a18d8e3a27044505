// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/tomtom215/hydroalert/internal/metrics"
)

// Authenticator validates credentials and resolves them to an Identity
// using current account state.
type Authenticator struct {
	tokens   *TokenManager
	accounts AccountDirectory
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *TokenManager, accounts AccountDirectory) *Authenticator {
	return &Authenticator{tokens: tokens, accounts: accounts}
}

// Authenticate returns the Identity behind credential or an *AuthError.
func (a *Authenticator) Authenticate(ctx context.Context, credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, a.fail(KindMissing, ErrMissingCredential)
	}

	claims, err := a.tokens.ValidateToken(credential)
	if err != nil {
		if errors.Is(err, ErrExpiredCredential) {
			return Identity{}, a.fail(KindExpired, err)
		}
		return Identity{}, a.fail(KindInvalid, err)
	}

	account, err := a.accounts.Lookup(ctx, claims.Subject)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return Identity{}, a.fail(KindRevoked, ErrRevoked)
	case err != nil:
		return Identity{}, a.fail(KindUnavailable, errors.Join(ErrDirectoryUnavailable, err))
	case !account.Active:
		return Identity{}, a.fail(KindRevoked, ErrRevoked)
	}

	return account.Identity(), nil
}

// AuthorizeAdminChannel reports whether identity may join admin channels.
func (a *Authenticator) AuthorizeAdminChannel(identity Identity) bool {
	switch identity.Role {
	case RoleAdmin:
		return true
	case RoleStandard:
		return false
	default:
		return false
	}
}

// Subject returns the token subject without consulting the directory.
// It is only suitable for keying rate limits, never for authorization.
func (a *Authenticator) Subject(credential string) (string, bool) {
	if credential == "" {
		return "", false
	}
	claims, err := a.tokens.ValidateToken(credential)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func (a *Authenticator) fail(kind Kind, err error) *AuthError {
	metrics.AuthFailures.WithLabelValues(string(kind)).Inc()
	return newAuthError(kind, err)
}
