// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/hydroalert/internal/auth"
)

// connectionSeq orders connections by arrival so snapshots iterate in a
// stable order.
var connectionSeq atomic.Uint64

// Connection is one authenticated live socket.
type Connection struct {
	id          string
	seq         uint64
	identity    auth.Identity
	connectedAt time.Time
	channels    []string
	transport   Transport
	live        atomic.Bool
}

func newConnection(transport Transport, identity auth.Identity, now time.Time) *Connection {
	c := &Connection{
		id:          uuid.NewString(),
		seq:         connectionSeq.Add(1),
		identity:    identity,
		connectedAt: now,
		channels:    channelsFor(identity),
		transport:   transport,
	}
	c.live.Store(true)
	return c
}

// channelsFor computes the channel set for an identity.
func channelsFor(identity auth.Identity) []string {
	channels := []string{ChannelGlobal, UserChannel(identity.ID)}
	switch identity.Role {
	case auth.RoleAdmin:
		channels = append(channels, ChannelAdmin, ChannelBroadcast)
	case auth.RoleStandard:
	}
	return channels
}

func (c *Connection) ID() string { return c.id }
func (c *Connection) Identity() auth.Identity { return c.identity }
func (c *Connection) ConnectedAt() time.Time { return c.connectedAt }
func (c *Connection) IsAdmin() bool { return c.identity.IsAdmin() }
func (c *Connection) Live() bool { return c.live.Load() }

// Channels returns a copy of the channel set.
func (c *Connection) Channels() []string {
	return slices.Clone(c.channels)
}

// InChannel reports membership of channel.
func (c *Connection) InChannel(channel string) bool {
	return slices.Contains(c.channels, channel)
}
