// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnectionGone is returned when sending on a closed transport.
var ErrConnectionGone = errors.New("connection gone")

// Transport is the send side of one live connection.
type Transport interface {
	// Send delivers one text frame. It may block until the write deadline.
	Send(ctx context.Context, payload []byte) error
	// Close sends a close frame with code and reason and releases the
	// socket. Codes reserved for local use are not put on the wire.
	Close(code int, reason string) error
}

// WSTransport adapts a gorilla/websocket connection. Writes are serialized
// because gorilla allows at most one concurrent writer.
type WSTransport struct {
	conn      *websocket.Conn
	writeWait time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWSTransport wraps conn.
func NewWSTransport(conn *websocket.Conn, writeWait time.Duration) *WSTransport {
	return &WSTransport{conn: conn, writeWait: writeWait}
}

func (t *WSTransport) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrConnectionGone
	}
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// Ping writes a ping control frame.
func (t *WSTransport) Ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrConnectionGone
	}
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.writeWait))
}

// Close is safe to call more than once.
func (t *WSTransport) Close(code int, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if sendableCloseCode(code) {
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(t.writeWait))
	}
	return t.conn.Close()
}

// sendableCloseCode reports whether code may appear in a close frame.
// 1005, 1006 and 1015 only describe a close locally; for those the socket
// is dropped without a frame.
func sendableCloseCode(code int) bool {
	switch code {
	case websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure, websocket.CloseTLSHandshake:
		return false
	default:
		return true
	}
}

// RefuseHandshake closes a freshly upgraded socket before any message is
// exchanged. Used for authentication and viewport validation failures.
func RefuseHandshake(conn *websocket.Conn, code int, reason string, writeWait time.Duration) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeWait))
	_ = conn.Close()
}
