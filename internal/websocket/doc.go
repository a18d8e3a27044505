// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package websocket tracks live client connections and delivers messages to them.

Key Components:

  - Registry: indexes live connections (all, per identity, admins) and performs
    unicast and multicast delivery
  - Connection: one authenticated socket with its channel set
  - Transport: the send/close seam; WSTransport adapts gorilla/websocket
  - Session: the per-socket read loop, keepalive pings and inbound dispatch
  - Dispatcher: maps inbound message types to handlers

Channels:

Every connection joins "global" and "user:<id>". Admin connections also join
"admin" and "broadcast" and are indexed in the admin subset.

Delivery:

Multicasts iterate a snapshot of the target index taken under the read lock,
so pruning during a broadcast never disturbs the iteration. A failed send is
converted into Disconnect of that one connection; other recipients are
unaffected and callers never see transport errors. Disconnect is idempotent.

Sends to one connection are serialized by its transport, so a client sees
messages in the order they were submitted. There is no replay queue: messages
to a connection that has gone are dropped.

Message Format:

	{"type": "map_update", "data": {...}}
*/
package websocket
