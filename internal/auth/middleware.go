// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hydroalert/internal/logging"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: message})
}

// RequireAuth authenticates the bearer token and stores the Identity in
// the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.Authenticate(r.Context(), BearerToken(r))
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) && authErr.Kind == KindUnavailable {
				logging.Ctx(r.Context()).Error().Err(err).Msg("account directory unavailable")
				writeAuthError(w, http.StatusServiceUnavailable, "UNAVAILABLE", authErr.Reason())
				return
			}
			if errors.As(err, &authErr) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="hydroalert"`)
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", authErr.Reason())
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authentication token")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin is RequireAuth plus an admin role check.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		if !a.AuthorizeAdminChannel(identity) {
			logging.Ctx(r.Context()).Warn().Str("user_id", identity.ID).Msg("admin access denied")
			writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequestSubject is an admission.IdentityFunc: it keys rate limits by the
// token subject when a valid credential is present.
func (a *Authenticator) RequestSubject(r *http.Request) (string, bool) {
	if id, ok := IdentityFromContext(r.Context()); ok {
		return id.ID, true
	}
	return a.Subject(RequestCredential(r))
}
