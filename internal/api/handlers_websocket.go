// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/mapevents"
	"github.com/tomtom215/hydroalert/internal/metrics"
	ws "github.com/tomtom215/hydroalert/internal/websocket"
)

// maxCloseReason is the largest close reason a control frame can carry.
const maxCloseReason = 123

// NotificationsSocket upgrades to the notification socket. The credential
// is read from the Authorization header or the token query parameter.
func (h *Handler) NotificationsSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("handshake").Inc()
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	identity, ok := h.authenticateSocket(r, conn)
	if !ok {
		return
	}

	transport := ws.NewWSTransport(conn, h.sessionCfg.WriteWait)
	c, err := h.registry.Connect(r.Context(), transport, identity)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", identity.ID).Msg("WebSocket welcome failed")
		return
	}
	h.notifications.Run(r.Context(), conn, transport, c)
}

// MapSocket upgrades to the map socket. Besides the credential the client
// supplies its initial viewport as north, south, east and west query
// parameters. Invalid bounds refuse the connection before registration.
func (h *Handler) MapSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("handshake").Inc()
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	identity, ok := h.authenticateSocket(r, conn)
	if !ok {
		return
	}

	box, err := parseBounds(r.URL.Query())
	if err == nil {
		err = box.Validate()
	}
	if err != nil {
		metrics.WSErrors.WithLabelValues("handshake").Inc()
		logging.Ctx(r.Context()).Info().Err(err).Str("user_id", identity.ID).Msg("map connection refused")
		ws.RefuseHandshake(conn, websocket.ClosePolicyViolation, closeReason(err.Error()), h.sessionCfg.WriteWait)
		return
	}

	transport := ws.NewWSTransport(conn, h.sessionCfg.WriteWait)
	c, err := h.registry.Connect(r.Context(), transport, identity)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("user_id", identity.ID).Msg("WebSocket welcome failed")
		return
	}
	if err := h.broadcaster.Track(c, box); err != nil {
		h.registry.DisconnectWithReason(c, websocket.ClosePolicyViolation, closeReason(err.Error()))
		return
	}

	ack := ws.Message{
		Type: ws.MessageTypeMapConnectionEstablished,
		Data: map[string]interface{}{
			"message":       "Connected to real-time map updates",
			"user":          identity.Username,
			"role":          identity.Role.String(),
			"connection_id": c.ID(),
			"viewport":      box,
			"timestamp":     ws.Timestamp(time.Now()),
		},
	}
	if !h.registry.Unicast(r.Context(), c, ack) {
		return
	}
	h.maps.Run(r.Context(), conn, transport, c)
}

// authenticateSocket verifies the handshake credential. On failure the
// socket is closed with 1008 and the failure reason.
func (h *Handler) authenticateSocket(r *http.Request, conn *websocket.Conn) (auth.Identity, bool) {
	identity, err := h.auth.Authenticate(r.Context(), auth.RequestCredential(r))
	if err == nil {
		return identity, true
	}

	reason := "Authentication failed"
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		reason = authErr.Reason()
	}
	metrics.WSErrors.WithLabelValues("handshake").Inc()
	logging.Ctx(r.Context()).Warn().
		Err(err).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("WebSocket authentication failed")
	ws.RefuseHandshake(conn, websocket.ClosePolicyViolation, reason, h.sessionCfg.WriteWait)
	return auth.Identity{}, false
}

var boundsParams = [...]string{"north", "south", "east", "west"}

// parseBounds reads the four viewport query parameters. All are required.
func parseBounds(q url.Values) (mapevents.BoundingBox, error) {
	var vals [len(boundsParams)]float64
	for i, name := range boundsParams {
		raw := q.Get(name)
		if raw == "" {
			return mapevents.BoundingBox{}, fmt.Errorf("%w: %s is required", mapevents.ErrInvalidBounds, name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return mapevents.BoundingBox{}, fmt.Errorf("%w: %s must be a number", mapevents.ErrInvalidBounds, name)
		}
		vals[i] = v
	}
	return mapevents.BoundingBox{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}, nil
}

// closeReason fits s into a close frame without splitting a rune.
func closeReason(s string) string {
	if len(s) <= maxCloseReason {
		return s
	}
	n := maxCloseReason
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
