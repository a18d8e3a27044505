// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// In-band error texts returned to clients.
const (
	ErrTextInvalidJSON     = "Invalid JSON format"
	ErrTextUnknownType     = "Unknown message type"
	ErrTextTooManyMessages = "Too many messages"
)

// Handler answers one inbound message. A nil reply sends nothing.
type Handler func(ctx context.Context, c *Connection, data json.RawMessage) *Message

type route struct {
	handler   Handler
	adminOnly bool
}

// Dispatcher routes inbound messages by type.
type Dispatcher struct {
	mu     sync.RWMutex
	routes map[string]route
	now    func() time.Time
}

// inbound is the envelope decoded from client frames.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewDispatcher returns a dispatcher that already answers ping.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{routes: make(map[string]route), now: time.Now}
	d.Handle(MessageTypePing, d.pong)
	return d
}

// Handle registers h for msgType, replacing any earlier handler.
func (d *Dispatcher) Handle(msgType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[msgType] = route{handler: h}
}

// HandleAdmin registers h for admin connections only. Other connections
// are answered as if the type did not exist.
func (d *Dispatcher) HandleAdmin(msgType string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.routes[msgType] = route{handler: h, adminOnly: true}
}

// Dispatch decodes raw and returns the reply for c, or nil.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Connection, raw []byte) *Message {
	var in inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		reply := ErrorMessage(ErrTextInvalidJSON)
		return &reply
	}

	d.mu.RLock()
	rt, ok := d.routes[in.Type]
	d.mu.RUnlock()
	if !ok || (rt.adminOnly && !c.IsAdmin()) {
		reply := ErrorMessage(ErrTextUnknownType)
		return &reply
	}
	return rt.handler(ctx, c, in.Data)
}

func (d *Dispatcher) pong(_ context.Context, _ *Connection, _ json.RawMessage) *Message {
	return &Message{
		Type: MessageTypePong,
		Data: map[string]string{"timestamp": Timestamp(d.now())},
	}
}
