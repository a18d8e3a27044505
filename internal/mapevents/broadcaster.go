// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package mapevents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
	"github.com/tomtom215/hydroalert/internal/websocket"
)

// Layer names the map layer a feature belongs to.
type Layer string

const (
	LayerFloodReadings     Layer = "flood_readings"
	LayerEmergencyReports  Layer = "emergency_reports"
	LayerEvacuationCenters Layer = "evacuation_centers"
)

// Actions carried in map_update.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one geo-tagged change to broadcast.
type Event struct {
	Layer      Layer
	Action     string
	Lat        float64
	Lng        float64
	Properties map[string]interface{}
}

// Feature is a GeoJSON point feature.
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry is a GeoJSON point. Coordinates are [lng, lat].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// UpdateData is the payload of map_update.
type UpdateData struct {
	Layer     Layer       `json:"layer"`
	Action    string      `json:"action"`
	Feature   Feature     `json:"feature"`
	Bounds    BoundingBox `json:"bounds"`
	Timestamp string      `json:"timestamp"`
}

// Broadcaster delivers geo events to the connections whose viewport
// overlaps them.
type Broadcaster struct {
	registry *websocket.Registry
	index    *Index
	radiusKm float64
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithRadius overrides DefaultRadiusKm.
func WithRadius(km float64) Option {
	return func(b *Broadcaster) {
		if km > 0 {
			b.radiusKm = km
		}
	}
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Broadcaster) { b.now = now }
}

// NewBroadcaster binds index to registry. Viewports are dropped when their
// connection leaves the registry.
func NewBroadcaster(registry *websocket.Registry, index *Index, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		registry: registry,
		index:    index,
		radiusKm: DefaultRadiusKm,
		now:      time.Now,
		log:      logging.WithComponent("mapevents"),
	}
	for _, opt := range opts {
		opt(b)
	}
	registry.OnDisconnect(func(c *websocket.Connection) {
		index.Unregister(c.ID())
	})
	return b
}

// Index returns the viewport index.
func (b *Broadcaster) Index() *Index {
	return b.index
}

// BroadcastEvent sends a map_update for ev and returns the number of
// connections it reached.
func (b *Broadcaster) BroadcastEvent(ctx context.Context, ev Event) int {
	affected := b.index.Affected(ev.Lat, ev.Lng, b.radiusKm)
	if len(affected) == 0 {
		return 0
	}

	props := make(map[string]interface{}, len(ev.Properties)+1)
	for k, v := range ev.Properties {
		props[k] = v
	}
	props["layer"] = ev.Layer

	msg := websocket.Message{
		Type: websocket.MessageTypeMapUpdate,
		Data: UpdateData{
			Layer:  ev.Layer,
			Action: ev.Action,
			Feature: Feature{
				Type:       "Feature",
				Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{ev.Lng, ev.Lat}},
				Properties: props,
			},
			Bounds:    featureBounds(ev.Lat, ev.Lng),
			Timestamp: websocket.Timestamp(b.now()),
		},
	}
	delivered := b.registry.SendTo(ctx, affected, msg)
	metrics.MapUpdatesDelivered.WithLabelValues(string(ev.Layer)).Add(float64(delivered))
	b.log.Debug().
		Str("layer", string(ev.Layer)).
		Str("action", ev.Action).
		Int("affected", len(affected)).
		Int("delivered", delivered).
		Msg("map update broadcast")
	return delivered
}

// BroadcastRefresh tells every connection viewing box to reload its data.
func (b *Broadcaster) BroadcastRefresh(ctx context.Context, box BoundingBox) int {
	affected := b.index.Overlapping(box)
	if len(affected) == 0 {
		return 0
	}
	msg := websocket.Message{
		Type: websocket.MessageTypeMapRefresh,
		Data: map[string]interface{}{
			"bounds":    box,
			"timestamp": websocket.Timestamp(b.now()),
			"message":   "Map data has been updated in your current view",
		},
	}
	return b.registry.SendTo(ctx, affected, msg)
}

// Track registers box as the viewport of c. If c was disconnected
// concurrently the entry is removed again and ErrConnectionGone is
// returned. The live flag flips before disconnect hooks run, so either the
// hook or this re-check drops the entry.
func (b *Broadcaster) Track(c *websocket.Connection, box BoundingBox) error {
	if err := b.index.Register(c.ID(), box); err != nil {
		return err
	}
	if !c.Live() {
		b.index.Unregister(c.ID())
		return fmt.Errorf("track viewport %s: %w", c.ID(), websocket.ErrConnectionGone)
	}
	return nil
}

// Register installs the map message handlers on d.
func (b *Broadcaster) Register(d *websocket.Dispatcher) {
	d.Handle(websocket.MessageTypeViewportUpdate, b.handleViewportUpdate)
	d.Handle(websocket.MessageTypeRequestRefresh, b.handleRequestRefresh)
	d.HandleAdmin(websocket.MessageTypeGetViewportStats, b.handleViewportStats)
}

type viewportUpdate struct {
	Viewport *BoundingBox `json:"viewport"`
}

func (b *Broadcaster) handleViewportUpdate(_ context.Context, c *websocket.Connection, data json.RawMessage) *websocket.Message {
	var req viewportUpdate
	if len(data) == 0 || json.Unmarshal(data, &req) != nil || req.Viewport == nil {
		reply := websocket.ErrorMessage("Invalid viewport")
		return &reply
	}
	if err := b.Track(c, *req.Viewport); err != nil {
		if errors.Is(err, websocket.ErrConnectionGone) {
			return nil
		}
		reply := websocket.ErrorMessage(err.Error())
		return &reply
	}
	return &websocket.Message{
		Type: websocket.MessageTypeViewportUpdated,
		Data: map[string]interface{}{
			"connection_id": c.ID(),
			"viewport":      *req.Viewport,
			"timestamp":     websocket.Timestamp(b.now()),
		},
	}
}

func (b *Broadcaster) handleRequestRefresh(_ context.Context, c *websocket.Connection, _ json.RawMessage) *websocket.Message {
	return &websocket.Message{
		Type: websocket.MessageTypeRefreshRequested,
		Data: map[string]interface{}{
			"message":       "Map data refresh requested",
			"connection_id": c.ID(),
			"timestamp":     websocket.Timestamp(b.now()),
		},
	}
}

func (b *Broadcaster) handleViewportStats(_ context.Context, c *websocket.Connection, _ json.RawMessage) *websocket.Message {
	return &websocket.Message{
		Type: websocket.MessageTypeViewportStats,
		Data: map[string]interface{}{
			"stats":         b.index.Stats(),
			"connection_id": c.ID(),
			"timestamp":     websocket.Timestamp(b.now()),
		},
	}
}
