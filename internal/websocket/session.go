// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
)

// SessionConfig holds the per-connection socket limits.
type SessionConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	InboundRate    float64
	InboundBurst   int
}

// DefaultSessionConfig returns the limits used when none are configured.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 64 * 1024,
		InboundRate:    20,
		InboundBurst:   40,
	}
}

func (c SessionConfig) pingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

// Session drives the read side of one registered connection and keeps it
// alive with pings until the peer goes away or ctx is done.
type Session struct {
	cfg        SessionConfig
	registry   *Registry
	dispatcher *Dispatcher
}

// NewSession binds the registry and dispatcher used by every connection.
func NewSession(cfg SessionConfig, registry *Registry, dispatcher *Dispatcher) *Session {
	return &Session{cfg: cfg, registry: registry, dispatcher: dispatcher}
}

// Run blocks until the connection ends. The connection is always
// disconnected from the registry on return.
func (s *Session) Run(ctx context.Context, conn *websocket.Conn, transport *WSTransport, c *Connection) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.registry.Disconnect(c)
	}()

	log := logging.WithConnection(c.ID(), c.Identity().ID)

	conn.SetReadLimit(s.cfg.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait)); err != nil {
		log.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	go s.keepalive(ctx, transport, c)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if s.cfg.InboundRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.InboundRate), s.cfg.InboundBurst)
	}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("read").Inc()
				log.Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		var reply *Message
		if limiter.Allow() {
			reply = s.dispatcher.Dispatch(ctx, c, raw)
		} else {
			metrics.WSErrors.WithLabelValues("throttled").Inc()
			msg := ErrorMessage(ErrTextTooManyMessages)
			reply = &msg
		}
		if reply != nil && !s.registry.Unicast(ctx, c, *reply) {
			return
		}
	}
}

func (s *Session) keepalive(ctx context.Context, transport *WSTransport, c *Connection) {
	ticker := time.NewTicker(s.cfg.pingPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := transport.Ping(); err != nil {
				s.registry.DisconnectWithReason(c, websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}
