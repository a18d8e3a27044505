// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/notify"
	ws "github.com/tomtom215/hydroalert/internal/websocket"
)

// BroadcastResult is returned by every broadcast endpoint.
type BroadcastResult struct {
	Message   string `json:"message"`
	Delivered int    `json:"delivered"`
}

// EmergencyAlert broadcasts an emergency alert to every connection.
func (h *Handler) EmergencyAlert(w http.ResponseWriter, r *http.Request) {
	var req notify.Alert
	if !decodeBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}
	delivered := h.notifier.EmergencyAlert(r.Context(), req)
	h.auditAdmin(r, "emergency_alert", delivered)
	respondSuccess(w, r, BroadcastResult{Message: "Emergency alert broadcast", Delivered: delivered})
}

// SystemNotification broadcasts a system notification to every connection.
func (h *Handler) SystemNotification(w http.ResponseWriter, r *http.Request) {
	var req notify.Notification
	if !decodeBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}
	delivered := h.notifier.SystemNotification(r.Context(), req)
	h.auditAdmin(r, "system_notification", delivered)
	respondSuccess(w, r, BroadcastResult{Message: "System notification broadcast", Delivered: delivered})
}

// ReportUpdateBroadcast sends a report update note to every admin.
func (h *Handler) ReportUpdateBroadcast(w http.ResponseWriter, r *http.Request) {
	var req ReportUpdateRequest
	if !decodeBody(w, r, &req) || !validateRequest(w, r, &req) {
		return
	}
	sender, _ := auth.IdentityFromContext(r.Context())
	delivered := h.notifier.AdminMessage(r.Context(), map[string]interface{}{
		"report_id": req.ReportID,
		"message":   req.Message,
		"sent_by":   sender.Username,
		"timestamp": ws.Timestamp(time.Now()),
	})
	h.auditAdmin(r, "report_update", delivered)
	respondSuccess(w, r, BroadcastResult{Message: "Report update sent to admins", Delivered: delivered})
}

// Connections returns registry statistics.
func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.registry.Stats())
}

// Viewports returns the registered map viewports.
func (h *Handler) Viewports(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.broadcaster.Index().Stats())
}

// ConnectionTestResult is the body of a successful test-connection call.
type ConnectionTestResult struct {
	UserID    string `json:"user_id,omitempty"`
	Delivered int    `json:"delivered"`
}

// TestConnection sends a connection_test to user_id, or to everybody when
// the parameter is absent. 404 when the user has no live connection.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	delivered, ok := h.notifier.ConnectionTest(r.Context(), userID)
	if !ok {
		respondError(w, r, http.StatusNotFound, &APIError{Code: "NOT_CONNECTED", Message: "User is not connected"})
		return
	}
	respondSuccess(w, r, ConnectionTestResult{UserID: userID, Delivered: delivered})
}

func (h *Handler) auditAdmin(r *http.Request, action string, delivered int) {
	sender, _ := auth.IdentityFromContext(r.Context())
	logging.Ctx(r.Context()).Info().
		Str("admin_id", sender.ID).
		Str("action", action).
		Int("delivered", delivered).
		Msg("admin broadcast")
}
