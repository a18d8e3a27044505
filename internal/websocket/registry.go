// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
)

// ShutdownReason identifies why the registry stopped serving.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Registry is the set of live connections and their indexes.
//
// Invariants, all maintained under mu:
//   - a connection is in all iff it is live
//   - byIdentity holds no empty lists
//   - admins is a subset of all holding exactly the admin connections
type Registry struct {
	mu         sync.RWMutex
	all        map[string]*Connection
	byIdentity map[string][]*Connection
	admins     map[string]*Connection

	hooksMu      sync.RWMutex
	onDisconnect []func(*Connection)

	now func() time.Time
	log zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		all:        make(map[string]*Connection),
		byIdentity: make(map[string][]*Connection),
		admins:     make(map[string]*Connection),
		now:        time.Now,
		log:        logging.WithComponent("registry"),
	}
}

// OnDisconnect registers fn to run once for every connection that leaves
// the registry, after it has been removed from all indexes.
func (r *Registry) OnDisconnect(fn func(*Connection)) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.onDisconnect = append(r.onDisconnect, fn)
}

// Connect registers a new connection for identity and sends it the
// connection_established welcome. If the welcome cannot be delivered the
// connection is pruned and ErrConnectionGone is returned.
func (r *Registry) Connect(ctx context.Context, transport Transport, identity auth.Identity) (*Connection, error) {
	c := newConnection(transport, identity, r.now())

	r.mu.Lock()
	r.all[c.id] = c
	r.byIdentity[identity.ID] = append(r.byIdentity[identity.ID], c)
	if c.IsAdmin() {
		r.admins[c.id] = c
	}
	total, admins := len(r.all), len(r.admins)
	r.mu.Unlock()

	metrics.RecordConnectionCounts(total, admins)
	r.log.Info().
		Str("connection_id", c.id).
		Str("user_id", identity.ID).
		Str("role", identity.Role.String()).
		Int("total_connections", total).
		Msg("websocket connected")

	welcome := Message{
		Type: MessageTypeConnectionEstablished,
		Data: map[string]interface{}{
			"message":       "Connected to real-time notifications",
			"connection_id": c.id,
			"user":          identity.Username,
			"user_id":       identity.ID,
			"role":          identity.Role.String(),
			"channels":      c.Channels(),
			"timestamp":     Timestamp(c.connectedAt),
		},
	}
	if !r.Unicast(ctx, c, welcome) {
		return nil, fmt.Errorf("send welcome: %w", ErrConnectionGone)
	}
	return c, nil
}

// Disconnect removes c from every index and closes its transport. Calling
// it again for the same connection is a no-op.
func (r *Registry) Disconnect(c *Connection) {
	r.disconnect(c, websocket.CloseNormalClosure, "")
}

// DisconnectWithReason is Disconnect with an explicit close code.
func (r *Registry) DisconnectWithReason(c *Connection, code int, reason string) {
	r.disconnect(c, code, reason)
}

func (r *Registry) disconnect(c *Connection, code int, reason string) {
	if c == nil || !c.live.CompareAndSwap(true, false) {
		return
	}

	r.mu.Lock()
	delete(r.all, c.id)
	delete(r.admins, c.id)
	uid := c.identity.ID
	if list := r.byIdentity[uid]; list != nil {
		list = slices.DeleteFunc(list, func(x *Connection) bool { return x == c })
		if len(list) == 0 {
			delete(r.byIdentity, uid)
		} else {
			r.byIdentity[uid] = list
		}
	}
	total, admins := len(r.all), len(r.admins)
	r.mu.Unlock()

	_ = c.transport.Close(code, reason)
	metrics.RecordConnectionCounts(total, admins)
	r.log.Info().
		Str("connection_id", c.id).
		Str("user_id", uid).
		Int("total_connections", total).
		Msg("websocket disconnected")

	r.hooksMu.RLock()
	hooks := slices.Clone(r.onDisconnect)
	r.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(c)
	}
}

// Lookup returns the live connection with id.
func (r *Registry) Lookup(id string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.all[id]
	return c, ok
}

// Unicast sends msg to c. A send failure disconnects c and returns false.
func (r *Registry) Unicast(ctx context.Context, c *Connection, msg Message) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.log.Error().Err(err).Str("type", msg.Type).Msg("failed to marshal message")
		return false
	}
	return r.send(ctx, c, payload)
}

func (r *Registry) send(ctx context.Context, c *Connection, payload []byte) bool {
	if !c.Live() || ctx.Err() != nil {
		return false
	}
	if err := c.transport.Send(ctx, payload); err != nil {
		metrics.RecordSendFailure()
		r.log.Warn().Err(err).Str("connection_id", c.id).Msg("send failed, pruning connection")
		r.disconnect(c, websocket.CloseAbnormalClosure, "")
		return false
	}
	metrics.WSMessagesSent.Inc()
	return true
}

// Multicast sends msg to every connection in targets and returns how many
// sends succeeded. Failures prune the failing connection only.
func (r *Registry) Multicast(ctx context.Context, targets []*Connection, msg Message) int {
	if len(targets) == 0 {
		return 0
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		r.log.Error().Err(err).Str("type", msg.Type).Msg("failed to marshal message")
		return 0
	}
	delivered := 0
	for _, c := range targets {
		if r.send(ctx, c, payload) {
			delivered++
		}
	}
	return delivered
}

// BroadcastToAdmins multicasts to the admin subset.
func (r *Registry) BroadcastToAdmins(ctx context.Context, msg Message) int {
	return r.Multicast(ctx, r.snapshot(func() []*Connection { return mapValues(r.admins) }), msg)
}

// BroadcastToUser multicasts to every connection held by one identity.
func (r *Registry) BroadcastToUser(ctx context.Context, userID string, msg Message) int {
	return r.Multicast(ctx, r.snapshot(func() []*Connection { return slices.Clone(r.byIdentity[userID]) }), msg)
}

// BroadcastToAll multicasts to every live connection.
func (r *Registry) BroadcastToAll(ctx context.Context, msg Message) int {
	return r.Multicast(ctx, r.AllConnections(), msg)
}

// SendTo multicasts to the live connections among ids. Unknown ids are
// skipped.
func (r *Registry) SendTo(ctx context.Context, ids []string, msg Message) int {
	return r.Multicast(ctx, r.snapshot(func() []*Connection {
		out := make([]*Connection, 0, len(ids))
		for _, id := range ids {
			if c, ok := r.all[id]; ok {
				out = append(out, c)
			}
		}
		return out
	}), msg)
}

// AllConnections returns a snapshot of every live connection.
func (r *Registry) AllConnections() []*Connection {
	return r.snapshot(func() []*Connection { return mapValues(r.all) })
}

// AdminConnections returns a snapshot of the admin subset.
func (r *Registry) AdminConnections() []*Connection {
	return r.snapshot(func() []*Connection { return mapValues(r.admins) })
}

// snapshot copies an index under the read lock and orders it by arrival.
func (r *Registry) snapshot(collect func() []*Connection) []*Connection {
	r.mu.RLock()
	out := collect()
	r.mu.RUnlock()
	slices.SortFunc(out, byArrival)
	return out
}

func byArrival(a, b *Connection) int {
	return cmp.Compare(a.seq, b.seq)
}

func mapValues(m map[string]*Connection) []*Connection {
	out := make([]*Connection, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// IsUserConnected reports whether userID holds at least one connection.
func (r *Registry) IsUserConnected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity[userID]) > 0
}

// ConnectionInfo describes one live connection for admin introspection.
type ConnectionInfo struct {
	ConnectionID string    `json:"connection_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	Channels     []string  `json:"channels"`
	ConnectedAt  time.Time `json:"connected_at"`
}

// Stats summarizes the registry.
type Stats struct {
	TotalConnections int              `json:"total_connections"`
	AdminConnections int              `json:"admin_connections"`
	UserConnections  int              `json:"user_connections"`
	UniqueUsers      int              `json:"unique_users"`
	ConnectedUsers   []ConnectionInfo `json:"connected_users"`
}

// Stats returns a consistent snapshot of registry sizes and members.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	conns := mapValues(r.all)
	s := Stats{
		TotalConnections: len(r.all),
		AdminConnections: len(r.admins),
		UserConnections:  len(r.all) - len(r.admins),
		UniqueUsers:      len(r.byIdentity),
	}
	r.mu.RUnlock()

	slices.SortFunc(conns, byArrival)
	s.ConnectedUsers = make([]ConnectionInfo, 0, len(conns))
	for _, c := range conns {
		s.ConnectedUsers = append(s.ConnectedUsers, ConnectionInfo{
			ConnectionID: c.id,
			UserID:       c.identity.ID,
			Username:     c.identity.Username,
			Role:         c.identity.Role.String(),
			Channels:     c.Channels(),
			ConnectedAt:  c.connectedAt,
		})
	}
	return s
}

// Serve blocks until ctx is done, then closes every live connection with
// 1001 going away. It makes the registry a supervised service.
func (r *Registry) Serve(ctx context.Context) error {
	<-ctx.Done()
	closed := r.CloseAll(websocket.CloseGoingAway, "server shutting down")
	r.log.Info().
		Str("reason", string(shutdownReason(ctx))).
		Int("connections_closed", closed).
		Msg("registry stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (r *Registry) String() string {
	return "websocket-registry"
}

// CloseAll disconnects every live connection and returns how many there were.
func (r *Registry) CloseAll(code int, reason string) int {
	conns := r.AllConnections()
	for _, c := range conns {
		r.disconnect(c, code, reason)
	}
	return len(conns)
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
