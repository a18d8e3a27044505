// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/config"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/mapevents"
	"github.com/tomtom215/hydroalert/internal/notify"
	ws "github.com/tomtom215/hydroalert/internal/websocket"
)

// handshakeTimeout bounds the WebSocket upgrade.
const handshakeTimeout = 10 * time.Second

// Handler holds the shared service objects every route uses. It is built
// once at startup.
type Handler struct {
	config      *config.Config
	auth        *auth.Authenticator
	registry    *ws.Registry
	broadcaster *mapevents.Broadcaster
	notifier    *notify.Notifier

	sessionCfg    ws.SessionConfig
	notifications *ws.Session
	maps          *ws.Session
}

// NewHandler builds the handler and the two socket dispatchers: the
// notification socket only answers ping, the map socket also accepts
// viewport and refresh requests.
func NewHandler(
	cfg *config.Config,
	authenticator *auth.Authenticator,
	registry *ws.Registry,
	broadcaster *mapevents.Broadcaster,
	notifier *notify.Notifier,
) *Handler {
	sessionCfg := ws.SessionConfig{
		WriteWait:      cfg.Realtime.WriteWait,
		PongWait:       cfg.Realtime.PongWait,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
		InboundRate:    cfg.Realtime.InboundRate,
		InboundBurst:   cfg.Realtime.InboundBurst,
	}

	mapDispatcher := ws.NewDispatcher()
	broadcaster.Register(mapDispatcher)

	return &Handler{
		config:        cfg,
		auth:          authenticator,
		registry:      registry,
		broadcaster:   broadcaster,
		notifier:      notifier,
		sessionCfg:    sessionCfg,
		notifications: ws.NewSession(sessionCfg, registry, ws.NewDispatcher()),
		maps:          ws.NewSession(sessionCfg, registry, mapDispatcher),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: handshakeTimeout,
	}
}

// checkWebSocketOrigin validates the Origin header against the CORS list.
// Requests without Origin come from native clients and are only accepted
// when the list contains "*".
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	allowed := h.config.Security.CORSOrigins
	wildcard := slices.Contains(allowed, "*")

	origin := r.Header.Get("Origin")
	if origin == "" {
		if !wildcard {
			logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		}
		return wildcard
	}
	if wildcard || slices.ContainsFunc(allowed, func(o string) bool { return strings.EqualFold(o, origin) }) {
		return true
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue escapes control characters to prevent log injection.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			b.WriteString("\\x")
			b.WriteByte("0123456789abcdef"[r>>4])
			b.WriteByte("0123456789abcdef"[r&0xF])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
