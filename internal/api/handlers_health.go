// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"
	"time"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string    `json:"status"`
	Connections int       `json:"connections"`
	Viewports   int       `json:"viewports"`
	Timestamp   time.Time `json:"timestamp"`
}

// Health reports liveness with the current connection and viewport counts.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Connections: h.registry.Count(),
		Viewports:   h.broadcaster.Index().Len(),
		Timestamp:   time.Now().UTC(),
	})
}
