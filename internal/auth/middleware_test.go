// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAdmin(t *testing.T) {
	m := newTestTokens(t)
	a := NewAuthenticator(m, NewMemoryDirectory(
		Account{ID: "1", Username: "ana", Role: RoleStandard, Active: true},
		Account{ID: "2", Username: "ops", Role: RoleAdmin, Active: true},
	))

	var seen Identity
	h := a.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"standard user", "Bearer " + mustToken(t, m, "1", RoleStandard), http.StatusForbidden},
		{"admin", "Bearer " + mustToken(t, m, "2", RoleAdmin), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/websocket/connections", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if seen.ID != "2" {
		t.Errorf("expected admin identity in context, got %+v", seen)
	}
}

func TestRequestSubject(t *testing.T) {
	m := newTestTokens(t)
	a := NewAuthenticator(m, NewMemoryDirectory())

	req := httptest.NewRequest(http.MethodGet, "/ws/map?token="+mustToken(t, m, "44", RoleStandard), nil)
	if id, ok := a.RequestSubject(req); !ok || id != "44" {
		t.Errorf("expected subject 44 from query token, got %q %v", id, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws/map?token=garbage", nil)
	if _, ok := a.RequestSubject(req); ok {
		t.Error("invalid token must not yield a subject")
	}
}
